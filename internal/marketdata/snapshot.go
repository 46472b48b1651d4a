package marketdata

import (
	"sync/atomic"
	"time"

	"github.com/wonny/optrisk/internal/contracts"
)

// Snapshot holds the server-side market data set and swaps it atomically
// 요청은 View() 로 받은 Store 를 끝까지 사용 (요청 중 교체되어도 일관성 유지)
type Snapshot struct {
	current atomic.Pointer[View]
	version atomic.Int64
}

// View is one installed snapshot generation
type View struct {
	Store    *Store
	LoadedAt time.Time
	Version  int64 // 교체마다 1 증가, 0 = 한 번도 로드되지 않음
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.current.Store(&View{Store: NewStore()})
	return s
}

// Replace installs a new store and returns its version
func (s *Snapshot) Replace(store *Store, loadedAt time.Time) int64 {
	if store == nil {
		store = NewStore()
	}
	v := s.version.Add(1)
	s.current.Store(&View{Store: store, LoadedAt: loadedAt, Version: v})
	return v
}

// View returns the installed generation
func (s *Snapshot) View() View {
	return *s.current.Load()
}

// Current returns the installed store
func (s *Snapshot) Current() *Store {
	return s.current.Load().Store
}

// LoadedAt returns when the installed store was loaded (zero if never)
func (s *Snapshot) LoadedAt() time.Time {
	return s.current.Load().LoadedAt
}

// Get implements contracts.MarketDataSource against the current store
func (s *Snapshot) Get(assetID string) (contracts.MarketData, bool) {
	return s.Current().Get(assetID)
}
