package marketdata

import (
	"sort"

	"github.com/wonny/optrisk/internal/contracts"
)

// Store is an immutable lookup table from asset id to market data
// ⭐ SSOT: 생성 이후 읽기 전용 (동시 조회 안전, 락 불필요)
type Store struct {
	records map[string]contracts.MarketData
}

// NewStore builds a store keyed by each record's AssetID
// Duplicate ids resolve to the last record supplied.
func NewStore(records ...contracts.MarketData) *Store {
	m := make(map[string]contracts.MarketData, len(records))
	for _, md := range records {
		m[md.AssetID] = md
	}
	return &Store{records: m}
}

// FromMap builds a store from the boundary's asset-id mapping
// 맵 키가 AssetID 로 강제됨 (레코드 내부 AssetID 보다 우선)
func FromMap(data map[string]contracts.MarketData) *Store {
	m := make(map[string]contracts.MarketData, len(data))
	for id, md := range data {
		md.AssetID = id
		m[id] = md
	}
	return &Store{records: m}
}

// Get returns the record for assetID
func (s *Store) Get(assetID string) (contracts.MarketData, bool) {
	if s == nil {
		return contracts.MarketData{}, false
	}
	md, ok := s.records[assetID]
	return md, ok
}

// Len returns the number of assets
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// AssetIDs returns all asset ids sorted
func (s *Store) AssetIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Records returns all records sorted by asset id
func (s *Store) Records() []contracts.MarketData {
	ids := s.AssetIDs()
	out := make([]contracts.MarketData, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id])
	}
	return out
}
