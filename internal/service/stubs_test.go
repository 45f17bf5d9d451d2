package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────

type stubPriceRepo struct {
	rows map[uuid.UUID]*model.PriceHistory
}

func newStubPriceRepo() *stubPriceRepo {
	return &stubPriceRepo{rows: make(map[uuid.UUID]*model.PriceHistory)}
}

func (r *stubPriceRepo) Create(_ context.Context, h *model.PriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()
	cp := *h
	r.rows[h.ID] = &cp
	return nil
}

func (r *stubPriceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceHistory, error) {
	h, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *stubPriceRepo) List(_ context.Context, filter dto.PriceHistoryFilter, today time.Time) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range r.rows {
		if filter.Part != "" && h.PartID.String() != filter.Part {
			continue
		}
		switch filter.IsActive {
		case "true":
			if !h.IsActive {
				continue
			}
		case "false":
			if h.IsActive {
				continue
			}
		}
		switch filter.Status {
		case "current":
			if !h.IsCurrent(today) {
				continue
			}
		case "future":
			if !h.IsFuture(today) {
				continue
			}
		case "expired":
			if !h.IsExpired(today) {
				continue
			}
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *stubPriceRepo) Update(_ context.Context, h *model.PriceHistory) error {
	if _, ok := r.rows[h.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	h.UpdatedAt = time.Now()
	cp := *h
	r.rows[h.ID] = &cp
	return nil
}

func (r *stubPriceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func (r *stubPriceRepo) ListActiveByPart(_ context.Context, partID uuid.UUID, exclude uuid.UUID) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range r.rows {
		if h.PartID != partID || !h.IsActive || h.ID == exclude {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (r *stubPriceRepo) LatestStarted(_ context.Context, partID uuid.UUID, today time.Time) (*model.PriceHistory, error) {
	var best *model.PriceHistory
	for _, h := range r.rows {
		if h.PartID != partID || !h.IsActive {
			continue
		}
		if model.DateOnly(h.StartDate).After(model.DateOnly(today)) {
			continue
		}
		if best == nil || h.StartDate.After(best.StartDate) {
			best = h
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *stubPriceRepo) ListCurrent(_ context.Context, partID uuid.UUID, today time.Time) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range r.rows {
		if h.PartID == partID && h.IsCurrent(today) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *stubPriceRepo) ListLapsedActive(_ context.Context, today time.Time, limit int) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range r.rows {
		if h.IsActive && h.IsExpired(today) {
			out = append(out, *h)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubPriceRepo) InTx(_ context.Context, fn func(repository.PriceHistoryRepository) error) error {
	return fn(r)
}

var _ repository.PriceHistoryRepository = (*stubPriceRepo)(nil)

type stubPartRepo struct {
	parts  map[uuid.UUID]*model.Part
	prices *stubPriceRepo
}

func newStubPartRepo(prices *stubPriceRepo) *stubPartRepo {
	return &stubPartRepo{parts: make(map[uuid.UUID]*model.Part), prices: prices}
}

func (r *stubPartRepo) Create(_ context.Context, p *model.Part) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	r.parts[p.ID] = &cp
	return nil
}

func (r *stubPartRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Part, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPartRepo) List(_ context.Context, filter dto.PartFilter) ([]model.Part, error) {
	var out []model.Part
	for _, p := range r.parts {
		if filter.Product != "" && p.ProductID.String() != filter.Product {
			continue
		}
		if filter.Branch != "" && p.SupplierBranchID.String() != filter.Branch {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPartRepo) Update(_ context.Context, p *model.Part) error {
	if _, ok := r.parts[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.parts[p.ID] = &cp
	return nil
}

func (r *stubPartRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.parts, id)
	return nil
}

func (r *stubPartRepo) CountByTriple(_ context.Context, productID, branchID uuid.UUID, partNumber string, exclude uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.parts {
		if p.ProductID == productID && p.SupplierBranchID == branchID && p.PartNumber == partNumber && p.ID != exclude {
			n++
		}
	}
	return n, nil
}

func (r *stubPartRepo) PriceHistoryCount(_ context.Context, partID uuid.UUID) (int64, error) {
	var n int64
	if r.prices != nil {
		for _, h := range r.prices.rows {
			if h.PartID == partID {
				n++
			}
		}
	}
	return n, nil
}

func (r *stubPartRepo) ActiveCountByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.parts {
		if p.ProductID == productID && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubPartRepo) ActiveCountByBranch(_ context.Context, branchID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.parts {
		if p.SupplierBranchID == branchID && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubPartRepo) InTx(_ context.Context, fn func(repository.PartRepository) error) error {
	return fn(r)
}

var _ repository.PartRepository = (*stubPartRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByNumber(_ context.Context, number string) (*model.Product, error) {
	for _, p := range r.products {
		if p.ProductNumber == number {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByUserID(_ context.Context, userid string) (*model.User, error) {
	for _, u := range r.users {
		if u.UserID == userid && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if !includeInactive && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = true
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
	branches  map[uuid.UUID]*model.SupplierBranch
	contacts  map[uuid.UUID]*model.SupplierContact
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{
		suppliers: make(map[uuid.UUID]*model.Supplier),
		branches:  make(map[uuid.UUID]*model.SupplierBranch),
		contacts:  make(map[uuid.UUID]*model.SupplierContact),
	}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) List(_ context.Context, filter dto.SupplierFilter) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		switch filter.IsActive {
		case "true":
			if !s.IsActive {
				continue
			}
		case "false":
			if s.IsActive {
				continue
			}
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	if _, ok := r.suppliers[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

func (r *stubSupplierRepo) BranchCount(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range r.branches {
		if b.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

func (r *stubSupplierRepo) ActiveBranchCount(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range r.branches {
		if b.SupplierID == supplierID && b.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubSupplierRepo) CreateBranch(_ context.Context, b *model.SupplierBranch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	cp := *b
	r.branches[b.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindBranchByID(_ context.Context, id uuid.UUID) (*model.SupplierBranch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *stubSupplierRepo) ListBranches(_ context.Context, filter dto.BranchFilter) ([]model.SupplierBranch, error) {
	var out []model.SupplierBranch
	for _, b := range r.branches {
		if filter.Supplier != "" && b.SupplierID.String() != filter.Supplier {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubSupplierRepo) UpdateBranch(_ context.Context, b *model.SupplierBranch) error {
	if _, ok := r.branches[b.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *b
	r.branches[b.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) DeleteBranch(_ context.Context, id uuid.UUID) error {
	delete(r.branches, id)
	return nil
}

func (r *stubSupplierRepo) CreateContact(_ context.Context, c *model.SupplierContact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindContactByID(_ context.Context, id uuid.UUID) (*model.SupplierContact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubSupplierRepo) ListContacts(_ context.Context, filter dto.ContactFilter) ([]model.SupplierContact, error) {
	var out []model.SupplierContact
	for _, c := range r.contacts {
		if filter.Branch != "" && c.BranchID.String() != filter.Branch {
			continue
		}
		switch filter.IsPrimary {
		case "true":
			if !c.IsPrimary {
				continue
			}
		case "false":
			if c.IsPrimary {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubSupplierRepo) UpdateContact(_ context.Context, c *model.SupplierContact) error {
	if _, ok := r.contacts[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) DeleteContact(_ context.Context, id uuid.UUID) error {
	delete(r.contacts, id)
	return nil
}

func (r *stubSupplierRepo) ClearPrimary(_ context.Context, branchID uuid.UUID, exclude uuid.UUID) error {
	for _, c := range r.contacts {
		if c.BranchID == branchID && c.IsPrimary && c.ID != exclude {
			c.IsPrimary = false
		}
	}
	return nil
}

func (r *stubSupplierRepo) InTx(_ context.Context, fn func(repository.SupplierRepository) error) error {
	return fn(r)
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── Infrastructure stubs ─────────────────────────────────────────────────────

type stubStore struct {
	objects map[string][]byte
	failAll bool
	removed []string
}

func newStubStore() *stubStore {
	return &stubStore{objects: make(map[string][]byte)}
}

var errStorageDown = errors.New("storage unavailable")

func (s *stubStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.failAll {
		return errStorageDown
	}
	data, _ := io.ReadAll(r)
	s.objects[key] = data
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	if s.failAll {
		return nil, "", errStorageDown
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "application/pdf", nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	if s.failAll {
		return errStorageDown
	}
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

type stubDispatcher struct {
	emails   []string // subjects
	cleanups []string // keys
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, _, subject, _, _ string) error {
	d.emails = append(d.emails, subject)
	return nil
}

func (d *stubDispatcher) EnqueueAttachmentCleanup(_ context.Context, key string) error {
	d.cleanups = append(d.cleanups, key)
	return nil
}

type stubCache struct {
	entries       map[uuid.UUID]*decimal.Decimal
	invalidations int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*decimal.Decimal)}
}

func (c *stubCache) Get(_ context.Context, partID uuid.UUID) (*decimal.Decimal, bool) {
	price, ok := c.entries[partID]
	return price, ok
}

func (c *stubCache) Set(_ context.Context, partID uuid.UUID, price *decimal.Decimal) {
	c.entries[partID] = price
}

func (c *stubCache) Invalidate(_ context.Context, partID uuid.UUID) {
	delete(c.entries, partID)
	c.invalidations++
}
