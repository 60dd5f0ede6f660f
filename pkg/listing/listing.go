// Package listing guarda o estado de paginação e filtros das listagens do
// console: página atual, termo de busca e UF selecionada.
package listing

import (
	"strings"
	"sync"
	"time"
)

// PageSize é fixo para todas as listagens.
const PageSize = 10

// AllUFs é o valor do seletor que remove o filtro de UF.
const AllUFs = "all"

// State é a posição do usuário em uma listagem.
type State struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`
	UF     string `json:"uf,omitempty"`
}

// New devolve o estado inicial: página 1, sem filtros.
func New() State {
	return State{Page: 1, Limit: PageSize}
}

// SetSearch troca o termo e volta à primeira página se ele mudou.
func (s State) SetSearch(term string) State {
	if term != s.Search {
		s.Search = term
		s.Page = 1
	}
	return s
}

// SetUF troca a UF; "all" limpa o filtro.
func (s State) SetUF(uf string) State {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if strings.EqualFold(uf, AllUFs) {
		uf = ""
	}
	if uf != s.UF {
		s.UF = uf
		s.Page = 1
	}
	return s
}

// SetPage não conhece o total de páginas; só impede valores abaixo de 1.
func (s State) SetPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Change é uma alteração vinda da requisição. Campos nulos não mudam nada.
type Change struct {
	Page   *int
	Search *string
	UF     *string
}

// Apply aplica primeiro os filtros e depois a página, de modo que uma
// alteração de filtro sempre termina na página 1.
func (s State) Apply(c Change) State {
	filtered := false
	if c.Search != nil && *c.Search != s.Search {
		s = s.SetSearch(*c.Search)
		filtered = true
	}
	if c.UF != nil {
		before := s.UF
		s = s.SetUF(*c.UF)
		filtered = filtered || s.UF != before
	}
	if c.Page != nil && !filtered {
		s = s.SetPage(*c.Page)
	}
	if s.Limit <= 0 {
		s.Limit = PageSize
	}
	return s
}

// Store mantém o estado por usuário e por tela. Estados sem uso por mais
// tempo que o prazo passado a Evict são descartados.
type Store struct {
	mu     sync.Mutex
	states map[string]stored
	now    func() time.Time
}

type stored struct {
	state State
	used  time.Time
}

func NewStore() *Store {
	return &Store{states: make(map[string]stored), now: time.Now}
}

func storeKey(user, view string) string {
	return user + "\x00" + view
}

// Get devolve o estado salvo ou o inicial.
func (s *Store) Get(user, view string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := storeKey(user, view)
	if st, ok := s.states[k]; ok {
		st.used = s.now()
		s.states[k] = st
		return st.state
	}
	return New()
}

// Update aplica a alteração ao estado salvo e devolve o resultado.
func (s *Store) Update(user, view string, c Change) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := storeKey(user, view)
	st, ok := s.states[k]
	if !ok {
		st.state = New()
	}
	st.state = st.state.Apply(c)
	st.used = s.now()
	s.states[k] = st
	return st.state
}

// Reset descarta o estado de um usuário em uma tela.
func (s *Store) Reset(user, view string) {
	s.mu.Lock()
	delete(s.states, storeKey(user, view))
	s.mu.Unlock()
}

// Evict remove os estados não usados há mais de idle e devolve quantos saíram.
func (s *Store) Evict(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for k, st := range s.states {
		if st.used.Before(cutoff) {
			delete(s.states, k)
			n++
		}
	}
	return n
}

// Len devolve quantos estados estão guardados.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
