package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/redis"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// ── in-memory store shared by the mock repositories ──

type mockStore struct {
	mu       sync.Mutex
	users    map[uint]*model.User
	cutoffs  map[uint]*model.Cutoff
	logs     map[uint]*model.VerificationLog // keyed by log id
	history  []model.CutoffHistoryLog
	clusters []model.Cluster
	nextID   uint

	failBulkCreate error
	failLogCreate  error
	failHistory    error
	clusterListN   int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:   make(map[uint]*model.User),
		cutoffs: make(map[uint]*model.Cutoff),
		logs:    make(map[uint]*model.VerificationLog),
	}
}

func (s *mockStore) id() uint {
	s.nextID++
	return s.nextID
}

type storeSnapshot struct {
	users   map[uint]model.User
	cutoffs map[uint]model.Cutoff
	logs    map[uint]model.VerificationLog
	history []model.CutoffHistoryLog
	nextID  uint
}

func (s *mockStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		users:   make(map[uint]model.User, len(s.users)),
		cutoffs: make(map[uint]model.Cutoff, len(s.cutoffs)),
		logs:    make(map[uint]model.VerificationLog, len(s.logs)),
		history: append([]model.CutoffHistoryLog(nil), s.history...),
		nextID:  s.nextID,
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	for k, v := range s.cutoffs {
		snap.cutoffs[k] = *v
	}
	for k, v := range s.logs {
		snap.logs[k] = *v
	}
	return snap
}

func (s *mockStore) restore(snap storeSnapshot) {
	s.users = make(map[uint]*model.User, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.users[k] = &v
	}
	s.cutoffs = make(map[uint]*model.Cutoff, len(snap.cutoffs))
	for k, v := range snap.cutoffs {
		v := v
		s.cutoffs[k] = &v
	}
	s.logs = make(map[uint]*model.VerificationLog, len(snap.logs))
	for k, v := range snap.logs {
		v := v
		s.logs[k] = &v
	}
	s.history = snap.history
	s.nextID = snap.nextID
}

func (s *mockStore) logFor(cutoffID uint) *model.VerificationLog {
	for _, l := range s.logs {
		if l.CutoffID == cutoffID {
			return l
		}
	}
	return nil
}

func (s *mockStore) addUser(email, name, role string) *model.User {
	u := &model.User{ID: s.id(), Email: email, Name: name, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *mockStore) addCutoff(userID uint, resi string) *model.Cutoff {
	lock := resi
	c := &model.Cutoff{ID: s.id(), ShipmentID: s.nextID + 1000, ResiNumber: resi, UserID: userID, ResiLock: &lock, CreatedAt: time.Now()}
	s.cutoffs[c.ID] = c
	return c
}

func (s *mockStore) addLog(cutoffID, userID uint, status string) *model.VerificationLog {
	l := &model.VerificationLog{ID: s.id(), CutoffID: cutoffID, SerialNumber: "SN", UserID: userID, Status: status, CreatedAt: time.Now()}
	s.logs[l.ID] = l
	if status == model.StatusRejected {
		s.cutoffs[cutoffID].ResiLock = nil
	}
	return l
}

func (s *mockStore) repository() *repository.Repository {
	return &repository.Repository{
		User:          &mockUserRepo{s},
		Cutoff:        &mockCutoffRepo{s},
		Cluster:       &mockClusterRepo{s},
		Log:           &mockLogRepo{s},
		CutoffHistory: &mockCutoffHistoryRepo{s},
		Dashboard:     &mockDashboardRepo{s},
		Tx:            &mockTransactor{s},
	}
}

// ── Mock Transactor ──

type mockTransactor struct{ s *mockStore }

func (m *mockTransactor) Transaction(ctx context.Context, fn func(repo *repository.Repository) error) error {
	m.s.mu.Lock()
	snap := m.s.snapshot()
	m.s.mu.Unlock()

	if err := fn(m.s.repository()); err != nil {
		m.s.mu.Lock()
		m.s.restore(snap)
		m.s.mu.Unlock()
		return err
	}
	return ctx.Err()
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) UpsertByEmail(_ context.Context, email, name string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			if name != "" {
				u.Name = name
			}
			cp := *u
			return &cp, nil
		}
	}
	u := m.s.addUser(email, name, model.RoleUser)
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) CreateIfNotExists(_ context.Context, user *model.User) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return false, nil
		}
	}
	user.ID = m.s.id()
	cp := *user
	m.s.users[user.ID] = &cp
	return true, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.User
	for _, u := range m.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Mock CutoffRepository ──

type mockCutoffRepo struct{ s *mockStore }

func (m *mockCutoffRepo) sorted() []*model.Cutoff {
	out := make([]*model.Cutoff, 0, len(m.s.cutoffs))
	for _, c := range m.s.cutoffs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockCutoffRepo) FindExistingResi(_ context.Context, resiNumbers []string) (map[string]struct{}, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	wanted := make(map[string]bool, len(resiNumbers))
	for _, r := range resiNumbers {
		wanted[r] = true
	}
	existing := make(map[string]struct{})
	for _, c := range m.s.cutoffs {
		if !wanted[c.ResiNumber] {
			continue
		}
		l := m.s.logFor(c.ID)
		if l == nil || l.Status == model.StatusVerified {
			existing[c.ResiNumber] = struct{}{}
		}
	}
	return existing, nil
}

func (m *mockCutoffRepo) BulkCreate(_ context.Context, items []model.Cutoff) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failBulkCreate != nil {
		return m.s.failBulkCreate
	}
	locks := make(map[string]bool)
	for _, c := range m.s.cutoffs {
		if c.ResiLock != nil {
			locks[*c.ResiLock] = true
		}
	}
	for _, item := range items {
		if item.ResiLock != nil {
			if locks[*item.ResiLock] {
				return pkgerrors.ErrDuplicateKey
			}
			locks[*item.ResiLock] = true
		}
	}
	for _, item := range items {
		item := item
		item.ID = m.s.id()
		item.CreatedAt = time.Now()
		m.s.cutoffs[item.ID] = &item
	}
	return nil
}

func (m *mockCutoffRepo) GetByID(_ context.Context, id uint) (*model.Cutoff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.cutoffs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCutoffRepo) ListWithStatus(_ context.Context, userID uint, offset, limit int) ([]repository.CutoffWithLog, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []repository.CutoffWithLog
	for _, c := range m.sorted() {
		if userID != 0 && c.UserID != userID {
			continue
		}
		row := repository.CutoffWithLog{ID: c.ID, ShipmentID: c.ShipmentID, ResiNumber: c.ResiNumber, UserID: c.UserID, CreatedAt: c.CreatedAt}
		if l := m.s.logFor(c.ID); l != nil {
			id, status := l.ID, l.Status
			row.LogID, row.LogStatus = &id, &status
		}
		all = append(all, row)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCutoffRepo) ListUnlogged(_ context.Context, userID uint) ([]model.Cutoff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Cutoff
	for _, c := range m.sorted() {
		if c.UserID == userID && m.s.logFor(c.ID) == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCutoffRepo) ListForExport(_ context.Context, userID uint) ([]model.Cutoff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Cutoff
	for _, c := range m.sorted() {
		if userID != 0 && c.UserID != userID {
			continue
		}
		cp := *c
		if u, ok := m.s.users[c.UserID]; ok {
			uc := *u
			cp.User = &uc
		}
		if l := m.s.logFor(c.ID); l != nil {
			lc := *l
			cp.Log = &lc
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *mockCutoffRepo) ClearResiLock(_ context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.cutoffs[id]; ok {
		c.ResiLock = nil
	}
	return nil
}

// ── Mock ClusterRepository ──

type mockClusterRepo struct{ s *mockStore }

func (m *mockClusterRepo) List(_ context.Context) ([]model.Cluster, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.clusterListN++
	return append([]model.Cluster(nil), m.s.clusters...), nil
}

// ── Mock LogRepository ──

type mockLogRepo struct{ s *mockStore }

func (m *mockLogRepo) GetByCutoffID(_ context.Context, cutoffID uint) (*model.VerificationLog, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if l := m.s.logFor(cutoffID); l != nil {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLogRepo) Create(_ context.Context, log *model.VerificationLog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failLogCreate != nil {
		return m.s.failLogCreate
	}
	if m.s.logFor(log.CutoffID) != nil {
		return pkgerrors.ErrDuplicateKey
	}
	log.ID = m.s.id()
	log.CreatedAt = time.Now()
	cp := *log
	m.s.logs[log.ID] = &cp
	return nil
}

// ── Mock CutoffHistoryRepository ──

type mockCutoffHistoryRepo struct{ s *mockStore }

func (m *mockCutoffHistoryRepo) Create(_ context.Context, h *model.CutoffHistoryLog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failHistory != nil {
		return m.s.failHistory
	}
	h.ID = m.s.id()
	h.CreatedAt = time.Now()
	m.s.history = append(m.s.history, *h)
	return nil
}

func (m *mockCutoffHistoryRepo) List(_ context.Context, offset, limit int) ([]model.CutoffHistoryLog, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	total := int64(len(m.s.history))
	var out []model.CutoffHistoryLog
	for i := len(m.s.history) - 1; i >= 0; i-- {
		out = append(out, m.s.history[i])
	}
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── Mock DashboardRepository ──

type mockDashboardRepo struct{ s *mockStore }

func (m *mockDashboardRepo) Counts(_ context.Context, userID uint) (*repository.DashboardCounts, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out repository.DashboardCounts
	for _, c := range m.s.cutoffs {
		if userID != 0 && c.UserID != userID {
			continue
		}
		out.TotalData++
		if m.s.logFor(c.ID) == nil {
			out.PendingVerification++
		}
	}
	for _, l := range m.s.logs {
		if userID != 0 && l.UserID != userID {
			continue
		}
		switch l.Status {
		case model.StatusVerified:
			out.VerifikasiSelesai++
		case model.StatusRejected:
			out.VerifikasiDitolak++
		}
	}
	return &out, nil
}

func (m *mockDashboardRepo) CountUsers(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.users)), nil
}

func (m *mockDashboardRepo) UserKPIs(_ context.Context) ([]repository.UserKPIRow, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var rows []repository.UserKPIRow
	for _, u := range m.s.users {
		if u.Role != model.RoleUser {
			continue
		}
		row := repository.UserKPIRow{ID: u.ID, Name: u.Name}
		for _, c := range m.s.cutoffs {
			if c.UserID != u.ID {
				continue
			}
			row.TotalData++
			switch l := m.s.logFor(c.ID); {
			case l == nil:
				row.PendingVerification++
			case l.Status == model.StatusVerified:
				row.VerifikasiSelesai++
			default:
				row.VerifikasiDitolak++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// ── Mock Upstream ──

type mockUpstream struct {
	mu sync.Mutex

	loginRes *skylink.LoginResult
	loginErr error
	me       *skylink.Profile

	shipments []skylink.Shipment
	listErr   error

	shipment     json.RawMessage
	shipmentErr  error
	evidences    json.RawMessage
	evidencesErr error

	updateErr error
	updates   []skylink.StatusUpdate

	static    *skylink.StaticFile
	staticErr error
}

func (m *mockUpstream) Login(_ context.Context, _, _ string) (*skylink.LoginResult, error) {
	return m.loginRes, m.loginErr
}

func (m *mockUpstream) Me(_ context.Context, _ string) (*skylink.Profile, error) {
	if m.me == nil {
		return nil, &skylink.APIError{StatusCode: 401}
	}
	return m.me, nil
}

func (m *mockUpstream) ListShipments(_ context.Context, _, _ string, _, _ int) ([]skylink.Shipment, error) {
	return m.shipments, m.listErr
}

func (m *mockUpstream) GetShipment(_ context.Context, _ string, _ uint) (json.RawMessage, error) {
	return m.shipment, m.shipmentErr
}

func (m *mockUpstream) ListEvidences(_ context.Context, _ string, _ uint) (json.RawMessage, error) {
	return m.evidences, m.evidencesErr
}

func (m *mockUpstream) UpdateShipmentStatus(_ context.Context, _, _ string, _ uint, update skylink.StatusUpdate) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updates = append(m.updates, update)
	return nil, nil
}

func (m *mockUpstream) FetchStatic(_ context.Context, _ string) (*skylink.StaticFile, error) {
	return m.static, m.staticErr
}

// ── Mock Cache / TokenBlacklist ──

type mockCache struct {
	data        map[string][]byte
	blacklisted map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), blacklisted: make(map[string]time.Duration)}
}

func (m *mockCache) GetCache(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, redis.ErrCacheMiss
}

func (m *mockCache) SetCache(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.blacklisted[jti] = ttl
	return nil
}
