package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore backs every fake repository. Transactions are serialised by txMu,
// which stands in for the row lock taken by FindByIDForUpdate.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users         map[uuid.UUID]model.User
	projects      map[uuid.UUID]model.Project
	taccounts     map[uuid.UUID]model.TAccount
	requests      map[uuid.UUID]model.TravelRequest
	audits        []model.AuditLog
	notifications []model.Notification

	auditErr  error
	notifyErr error
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uuid.UUID]model.User{},
		projects:  map[uuid.UUID]model.Project{},
		taccounts: map[uuid.UUID]model.TAccount{},
		requests:  map[uuid.UUID]model.TravelRequest{},
		clock:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so "newest first" is deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	users         map[uuid.UUID]model.User
	projects      map[uuid.UUID]model.Project
	taccounts     map[uuid.UUID]model.TAccount
	requests      map[uuid.UUID]model.TravelRequest
	audits        []model.AuditLog
	notifications []model.Notification
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:         map[uuid.UUID]model.User{},
		projects:      map[uuid.UUID]model.Project{},
		taccounts:     map[uuid.UUID]model.TAccount{},
		requests:      map[uuid.UUID]model.TravelRequest{},
		audits:        append([]model.AuditLog(nil), s.audits...),
		notifications: append([]model.Notification(nil), s.notifications...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.projects {
		snap.projects[k] = v
	}
	for k, v := range s.taccounts {
		snap.taccounts[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.projects = snap.projects
	s.taccounts = snap.taccounts
	s.requests = snap.requests
	s.audits = snap.audits
	s.notifications = snap.notifications
}

// --- seeding helpers ---

func (s *memStore) addUser(name, role string, manager *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{
		ID:        uuid.New(),
		Email:     name + "@xyz.dk",
		FullName:  name,
		Role:      role,
		IsActive:  true,
		CreatedAt: s.tick(),
	}
	if manager != nil {
		id := manager.ID
		u.ManagerID = &id
	}
	s.users[u.ID] = u
	return &u
}

func (s *memStore) addProject(name string, teamLead *model.User, active bool) *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Project{ID: uuid.New(), Name: name, IsActive: active, CreatedAt: s.tick()}
	if teamLead != nil {
		id := teamLead.ID
		p.TeamLeadID = &id
	}
	s.projects[p.ID] = p
	return &p
}

func (s *memStore) addTAccount(code string, active bool) *model.TAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := model.TAccount{ID: uuid.New(), AccountCode: code, AccountName: code + " budget", IsActive: active, CreatedAt: s.tick()}
	s.taccounts[a.ID] = a
	return &a
}

func (s *memStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *memStore) auditEntries() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.audits...)
}

func (s *memStore) notificationsFor(userID uuid.UUID) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) allNotifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.notifications...)
}

// --- transaction manager ---

type fakeTxManager struct{ store *memStore }

func (t *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// --- users ---

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.store.tick()
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users := make([]model.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return paginate(users, page, limit), int64(len(users)), nil
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, role string) ([]model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var users []model.User
	for _, u := range r.store.users {
		if u.Role == role && u.IsActive {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.users)), nil
}

// --- projects ---

type fakeProjectRepo struct{ store *memStore }

func (r *fakeProjectRepo) Create(_ context.Context, project *model.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = r.store.tick()
	stored := *project
	stored.TeamLead = nil
	r.store.projects[project.ID] = stored
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeProjectRepo) FindByName(_ context.Context, name string) (*model.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.projects {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProjectRepo) List(_ context.Context, activeOnly bool) ([]model.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var projects []model.Project
	for _, p := range r.store.projects {
		if activeOnly && !p.IsActive {
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *model.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *project
	stored.TeamLead = nil
	r.store.projects[project.ID] = stored
	return nil
}

// --- budget accounts ---

type fakeTAccountRepo struct{ store *memStore }

func (r *fakeTAccountRepo) Create(_ context.Context, account *model.TAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = r.store.tick()
	r.store.taccounts[account.ID] = *account
	return nil
}

func (r *fakeTAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.taccounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *fakeTAccountRepo) FindByCode(_ context.Context, code string) (*model.TAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.taccounts {
		if a.AccountCode == code {
			found := a
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTAccountRepo) List(_ context.Context, activeOnly bool) ([]model.TAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var accounts []model.TAccount
	for _, a := range r.store.taccounts {
		if activeOnly && !a.IsActive {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountCode < accounts[j].AccountCode })
	return accounts, nil
}

func (r *fakeTAccountRepo) Update(_ context.Context, account *model.TAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.taccounts[account.ID] = *account
	return nil
}

// --- travel requests ---

type fakeTravelRequestRepo struct{ store *memStore }

func stripRelations(req model.TravelRequest) model.TravelRequest {
	req.Requester = nil
	req.Approver = nil
	req.Project = nil
	req.TAccount = nil
	return req
}

func (r *fakeTravelRequestRepo) withRelations(req model.TravelRequest) model.TravelRequest {
	if u, ok := r.store.users[req.RequesterID]; ok {
		req.Requester = &u
	}
	if req.ApproverID != nil {
		if u, ok := r.store.users[*req.ApproverID]; ok {
			req.Approver = &u
		}
	}
	if req.ProjectID != nil {
		if p, ok := r.store.projects[*req.ProjectID]; ok {
			req.Project = &p
		}
	}
	if a, ok := r.store.taccounts[req.TAccountID]; ok {
		req.TAccount = &a
	}
	return req
}

func (r *fakeTravelRequestRepo) Create(_ context.Context, req *model.TravelRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := r.store.tick()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.requests[req.ID] = stripRelations(*req)
	return nil
}

func (r *fakeTravelRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *fakeTravelRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTravelRequestRepo) FindByIDWithRelations(_ context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	full := r.withRelations(req)
	return &full, nil
}

func (r *fakeTravelRequestRepo) ListPendingForApprover(_ context.Context, approverID uuid.UUID) ([]model.TravelRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.TravelRequest
	for _, req := range r.store.requests {
		if req.ApproverID != nil && *req.ApproverID == approverID && req.Status == model.StatusPending {
			out = append(out, r.withRelations(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTravelRequestRepo) ListByRequester(_ context.Context, requesterID uuid.UUID, status string, page, limit int) ([]model.TravelRequest, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.TravelRequest
	for _, req := range r.store.requests {
		if req.RequesterID == requesterID && (status == "" || req.Status == status) {
			out = append(out, r.withRelations(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *fakeTravelRequestRepo) UpdateDecision(_ context.Context, req *model.TravelRequest) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.requests[req.ID]
	if !ok || stored.Status != model.StatusPending {
		return 0, nil
	}
	stored.Status = req.Status
	stored.ApprovalDate = req.ApprovalDate
	stored.ApprovalComments = req.ApprovalComments
	stored.RejectionReason = req.RejectionReason
	stored.UpdatedAt = r.store.tick()
	r.store.requests[req.ID] = stored
	return 1, nil
}

func (r *fakeTravelRequestRepo) matching(filter repository.ReportFilter) []model.TravelRequest {
	status := filter.Status
	if status == "" {
		status = model.StatusApproved
	}
	var out []model.TravelRequest
	for _, req := range r.store.requests {
		if req.Status != status {
			continue
		}
		if filter.DateFrom != nil && (req.ApprovalDate == nil || req.ApprovalDate.Before(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && (req.ApprovalDate == nil || req.ApprovalDate.After(*filter.DateTo)) {
			continue
		}
		if filter.TAccountID != nil && req.TAccountID != *filter.TAccountID {
			continue
		}
		if filter.ProjectID != nil && (req.ProjectID == nil || *req.ProjectID != *filter.ProjectID) {
			continue
		}
		out = append(out, r.withRelations(req))
	}
	return out
}

func (r *fakeTravelRequestRepo) ListForReport(_ context.Context, filter repository.ReportFilter) ([]model.TravelRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := r.matching(filter)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApprovalDate != nil && out[j].ApprovalDate != nil && out[i].ApprovalDate.After(*out[j].ApprovalDate)
	})
	return out, nil
}

func (r *fakeTravelRequestRepo) SummaryByTAccount(_ context.Context, filter repository.ReportFilter) ([]repository.TAccountSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byAccount := map[uuid.UUID]*repository.TAccountSummary{}
	for _, req := range r.matching(filter) {
		row, ok := byAccount[req.TAccountID]
		if !ok {
			row = &repository.TAccountSummary{TAccountID: req.TAccountID, TotalCost: decimal.Zero}
			if req.TAccount != nil {
				row.AccountCode = req.TAccount.AccountCode
				row.AccountName = req.TAccount.AccountName
			}
			byAccount[req.TAccountID] = row
		}
		row.RequestCount++
		row.TotalCost = row.TotalCost.Add(req.EstimatedCost)
	}
	out := make([]repository.TAccountSummary, 0, len(byAccount))
	for _, row := range byAccount {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalCost.GreaterThan(out[j].TotalCost) })
	return out, nil
}

// --- audit ---

type fakeAuditRepo struct{ store *memStore }

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.auditErr != nil {
		return r.store.auditErr
	}
	entry.ID = uuid.New()
	entry.CreatedAt = r.store.tick()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) newestFirst(keep func(model.AuditLog) bool, limit int) []model.AuditLog {
	var out []model.AuditLog
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		if keep(r.store.audits[i]) {
			out = append(out, r.store.audits[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, entityType, entityID string, limit int) ([]model.AuditLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.newestFirst(func(l model.AuditLog) bool {
		return l.EntityType == entityType && l.EntityID == entityID
	}, limit), nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]model.AuditLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.newestFirst(func(l model.AuditLog) bool { return l.UserID == userID }, limit), nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := r.newestFirst(func(model.AuditLog) bool { return true }, 0)
	return paginate(all, page, limit), int64(len(all)), nil
}

// --- notifications ---

type fakeNotificationRepo struct{ store *memStore }

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, notifications []*model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.notifyErr != nil {
		return r.store.notifyErr
	}
	for _, n := range notifications {
		n.ID = uuid.New()
		n.CreatedAt = r.store.tick()
		r.store.notifications = append(r.store.notifications, *n)
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) newestFirst(keep func(model.Notification) bool, limit int) []model.Notification {
	var out []model.Notification
	for i := len(r.store.notifications) - 1; i >= 0; i-- {
		if keep(r.store.notifications[i]) {
			out = append(out, r.store.notifications[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeNotificationRepo) ListUnread(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.newestFirst(func(n model.Notification) bool { return n.UserID == userID && !n.IsRead }, 0), nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.newestFirst(func(n model.Notification) bool { return n.UserID == userID }, limit), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, n := range r.store.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id && !r.store.notifications[i].IsRead {
			r.store.notifications[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

// --- pusher ---

type recordingPusher struct {
	mu     sync.Mutex
	pushed []model.Notification
}

func (p *recordingPusher) Push(notifications []model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, notifications...)
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if limit <= 0 || start >= len(items) {
		if limit <= 0 {
			return items
		}
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
