package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/parsascontentcorner/clubserver/internal/database"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/events"
	"github.com/parsascontentcorner/clubserver/internal/ledger"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// ============================================================================
// In-memory store
// ============================================================================

type fakeState struct {
	seq         int64
	users       map[int64]models.User
	clubs       map[int64]models.Club
	admins      map[[2]int64]models.ClubAdmin
	images      map[int64]models.Image
	tiers       map[int64]models.ClubTier
	memberships map[int64]models.ClubMembership
	posts       map[int64]models.ClubPost
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		seq:         s.seq,
		users:       make(map[int64]models.User, len(s.users)),
		clubs:       make(map[int64]models.Club, len(s.clubs)),
		admins:      make(map[[2]int64]models.ClubAdmin, len(s.admins)),
		images:      make(map[int64]models.Image, len(s.images)),
		tiers:       make(map[int64]models.ClubTier, len(s.tiers)),
		memberships: make(map[int64]models.ClubMembership, len(s.memberships)),
		posts:       make(map[int64]models.ClubPost, len(s.posts)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.clubs {
		c.clubs[k] = v
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.images {
		c.images[k] = v
	}
	for k, v := range s.tiers {
		c.tiers[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	return c
}

// fakeStore is a Store kept in memory. InTx restores the state on error.
type fakeStore struct {
	mu    sync.Mutex
	state *fakeState
	// failOn makes the named method return the error
	failOn map[string]error
	// commitErr fails the next commit after fn succeeded
	commitErr error
	txs       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: (&fakeState{}).clone(),
		failOn: map[string]error{},
	}
}

func (f *fakeStore) next() int64 {
	f.state.seq++
	return f.state.seq
}

func (f *fakeStore) fail(method string) error {
	return f.failOn[method]
}

func (f *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	f.mu.Lock()
	snapshot := f.state.clone()
	f.txs++
	f.mu.Unlock()

	if err := fn(ctx, f); err != nil {
		f.mu.Lock()
		f.state = snapshot
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		err := f.commitErr
		f.commitErr = nil
		f.state = snapshot
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.state.users[userID]
	if !ok {
		return nil, errs.NotFound("user")
	}
	return &u, nil
}

func (f *fakeStore) CreateClub(ctx context.Context, club *models.Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateClub"); err != nil {
		return err
	}
	club.ID = f.next()
	club.CreatedAt = time.Now()
	club.UpdatedAt = club.CreatedAt
	f.state.clubs[club.ID] = *club
	return nil
}

func (f *fakeStore) UpdateClub(ctx context.Context, club *models.Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.clubs[club.ID]; !ok {
		return errs.NotFound("club")
	}
	f.state.clubs[club.ID] = *club
	return nil
}

func (f *fakeStore) GetClubByID(ctx context.Context, id int64) (*models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.state.clubs[id]
	if !ok {
		return nil, errs.NotFound("club")
	}
	return &c, nil
}

func (f *fakeStore) GetClubAdmin(ctx context.Context, clubID, userID int64) (*models.ClubAdmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.state.admins[[2]int64{clubID, userID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeStore) ListClubAdmins(ctx context.Context, clubID int64) ([]*models.ClubAdmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var admins []*models.ClubAdmin
	for k, a := range f.state.admins {
		if k[0] == clubID {
			a := a
			admins = append(admins, &a)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].UserID < admins[j].UserID })
	return admins, nil
}

func (f *fakeStore) UpsertClubAdmin(ctx context.Context, admin *models.ClubAdmin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.clubs[admin.ClubID]; !ok {
		return errs.NotFound("club or user")
	}
	f.state.admins[[2]int64{admin.ClubID, admin.UserID}] = *admin
	return nil
}

func (f *fakeStore) DeleteClubAdmin(ctx context.Context, clubID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{clubID, userID}
	if _, ok := f.state.admins[key]; !ok {
		return errs.NotFound("club admin")
	}
	delete(f.state.admins, key)
	return nil
}

func (f *fakeStore) CreateImages(ctx context.Context, images []*models.Image) (map[string]*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateImages"); err != nil {
		return nil, err
	}
	byURL := make(map[string]*models.Image, len(images))
	for _, img := range images {
		img.ID = f.next()
		f.state.images[img.ID] = *img
		byURL[img.URL] = img
	}
	return byURL, nil
}

func (f *fakeStore) CreateClubTiers(ctx context.Context, tiers []*models.ClubTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateClubTiers"); err != nil {
		return err
	}
	for _, t := range tiers {
		if t.Currency == "" {
			t.Currency = models.DefaultCurrency
		}
		t.ID = f.next()
		f.state.tiers[t.ID] = *t
	}
	return nil
}

func (f *fakeStore) UpdateClubTiers(ctx context.Context, tiers []*models.ClubTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateClubTiers"); err != nil {
		return err
	}
	for _, t := range tiers {
		current, ok := f.state.tiers[t.ID]
		if !ok || current.ClubID != t.ClubID {
			return errs.NotFound(fmt.Sprintf("club tier %d", t.ID))
		}
		if t.Currency == "" {
			t.Currency = models.DefaultCurrency
		}
		f.state.tiers[t.ID] = *t
	}
	return nil
}

func (f *fakeStore) DeleteClubTiers(ctx context.Context, clubID int64, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		for _, m := range f.state.memberships {
			if m.ClubTierID == id {
				return errs.BadRequest(msgTierHasMembers)
			}
		}
		if t, ok := f.state.tiers[id]; ok && t.ClubID == clubID {
			delete(f.state.tiers, id)
		}
	}
	return nil
}

func (f *fakeStore) CountTierMemberships(ctx context.Context, tierIDs []int64) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[int64]int, len(tierIDs))
	for _, id := range tierIDs {
		for _, m := range f.state.memberships {
			if m.ClubTierID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (f *fakeStore) countActive(tierID int64, now time.Time) int {
	n := 0
	for _, m := range f.state.memberships {
		holds := m.ClubTierID == tierID || (m.DowngradeClubTierID.Valid && m.DowngradeClubTierID.Int64 == tierID)
		if holds && !m.IsExpired(now) {
			n++
		}
	}
	return n
}

func (f *fakeStore) ListClubTiers(ctx context.Context, clubID int64, includeUnlisted bool, now time.Time) ([]*models.TierWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListClubTiers"); err != nil {
		return nil, err
	}
	var tiers []*models.TierWithCount
	for _, t := range f.state.tiers {
		if t.ClubID != clubID || (t.Unlisted && !includeUnlisted) {
			continue
		}
		tiers = append(tiers, &models.TierWithCount{ClubTier: t, MemberCount: f.countActive(t.ID, now)})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[j].RanksAbove(&tiers[i].ClubTier) })
	return tiers, nil
}

func (f *fakeStore) GetClubTierByID(ctx context.Context, id int64) (*models.ClubTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.state.tiers[id]
	if !ok {
		return nil, errs.NotFound("club tier")
	}
	return &t, nil
}

func (f *fakeStore) GetClubTierForUpdate(ctx context.Context, id int64, now time.Time) (*models.TierWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.state.tiers[id]
	if !ok {
		return nil, errs.NotFound("club tier")
	}
	return &models.TierWithCount{ClubTier: t, MemberCount: f.countActive(id, now)}, nil
}

func (f *fakeStore) findMembership(clubID, userID int64) *models.ClubMembership {
	for _, m := range f.state.memberships {
		if m.ClubID == clubID && m.UserID == userID {
			m := m
			return &m
		}
	}
	return nil
}

func (f *fakeStore) GetClubMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findMembership(clubID, userID), nil
}

func (f *fakeStore) GetClubMembershipForUpdate(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error) {
	return f.GetClubMembership(ctx, clubID, userID)
}

func (f *fakeStore) GetClubMembershipByIDForUpdate(ctx context.Context, id int64) (*models.ClubMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.memberships[id]
	if !ok {
		return nil, errs.NotFound("club membership")
	}
	return &m, nil
}

func (f *fakeStore) CreateClubMembership(ctx context.Context, m *models.ClubMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findMembership(m.ClubID, m.UserID) != nil {
		return errs.BadRequest("you are already a member of this club")
	}
	if m.Currency == "" {
		m.Currency = models.DefaultCurrency
	}
	m.ID = f.next()
	f.state.memberships[m.ID] = *m
	return nil
}

func (f *fakeStore) UpdateClubMembership(ctx context.Context, m *models.ClubMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateClubMembership"); err != nil {
		return err
	}
	if _, ok := f.state.memberships[m.ID]; !ok {
		return errs.NotFound("club membership")
	}
	f.state.memberships[m.ID] = *m
	return nil
}

func (f *fakeStore) DeleteClubMembership(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state.memberships, id)
	return nil
}

func (f *fakeStore) DeleteExpiredMemberships(ctx context.Context, now time.Time) ([]*models.ClubMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []*models.ClubMembership
	for id, m := range f.state.memberships {
		if m.IsExpired(now) {
			m := m
			expired = append(expired, &m)
			delete(f.state.memberships, id)
		}
	}
	return expired, nil
}

func (f *fakeStore) CreateClubPost(ctx context.Context, post *models.ClubPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = f.next()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	f.state.posts[post.ID] = *post
	return nil
}

func (f *fakeStore) UpdateClubPost(ctx context.Context, post *models.ClubPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.state.posts[post.ID]
	if !ok {
		return errs.NotFound("club post")
	}
	post.CreatedAt = current.CreatedAt
	f.state.posts[post.ID] = *post
	return nil
}

func (f *fakeStore) GetClubPostVisibility(ctx context.Context, id int64) (*models.PostVisibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.state.posts[id]
	if !ok {
		return nil, errs.NotFound("club post")
	}
	return &models.PostVisibility{ID: p.ID, ClubID: p.ClubID, CreatedByID: p.CreatedByID, MembersOnly: p.MembersOnly}, nil
}

func (f *fakeStore) GetClubPostByID(ctx context.Context, id int64) (*models.ClubPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.state.posts[id]
	if !ok {
		return nil, errs.NotFound("club post")
	}
	return &p, nil
}

func (f *fakeStore) ListClubPosts(ctx context.Context, params database.ListClubPostsParams) ([]*models.ClubPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	newerFirst := func(a, b models.ClubPost) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	cursor, hasCursor := f.state.posts[params.Cursor]

	var posts []*models.ClubPost
	for _, p := range f.state.posts {
		if p.ClubID != params.ClubID || (p.MembersOnly && !params.IncludeMembersOnly) {
			continue
		}
		if hasCursor && newerFirst(p, cursor) {
			continue
		}
		p := p
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool { return newerFirst(*posts[i], *posts[j]) })
	if len(posts) > params.Limit {
		posts = posts[:params.Limit]
	}
	return posts, nil
}

func (f *fakeStore) DeleteClubPost(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.posts[id]; !ok {
		return errs.NotFound("club post")
	}
	delete(f.state.posts, id)
	return nil
}

// ============================================================================
// Seeding helpers
// ============================================================================

func (f *fakeStore) seedClub(ownerID int64) *models.Club {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Club{ID: f.next(), UserID: ownerID, Name: "Club"}
	f.state.clubs[c.ID] = c
	return &c
}

func (f *fakeStore) seedTier(clubID int64, name string, amount int64, limit *int64) *models.ClubTier {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.ClubTier{ID: f.next(), ClubID: clubID, Name: name, UnitAmount: amount, Currency: models.DefaultCurrency, Joinable: true}
	if limit != nil {
		t.MemberLimit.Int64, t.MemberLimit.Valid = *limit, true
	}
	f.state.tiers[t.ID] = t
	return &t
}

func (f *fakeStore) seedMembership(m models.ClubMembership) *models.ClubMembership {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.next()
	if m.Currency == "" {
		m.Currency = models.DefaultCurrency
	}
	f.state.memberships[m.ID] = m
	return &m
}

func (f *fakeStore) seedAdmin(clubID, userID int64, perms ...models.ClubAdminPermission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.ClubAdmin{ClubID: clubID, UserID: userID}
	for _, p := range perms {
		a.Permissions = append(a.Permissions, string(p))
	}
	f.state.admins[[2]int64{clubID, userID}] = a
}

func (f *fakeStore) seedPost(p models.ClubPost) *models.ClubPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.next()
	f.state.posts[p.ID] = p
	return &p
}

func (f *fakeStore) membership(id int64) (models.ClubMembership, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.memberships[id]
	return m, ok
}

func (f *fakeStore) tiersOf(clubID int64) []models.ClubTier {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tiers []models.ClubTier
	for _, t := range f.state.tiers {
		if t.ClubID == clubID {
			tiers = append(tiers, t)
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].ID < tiers[j].ID })
	return tiers
}

func (f *fakeStore) count() (clubs, tiers, images int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.clubs), len(f.state.tiers), len(f.state.images)
}

// ============================================================================
// Ledger, cache, publisher and recorder fakes
// ============================================================================

type fakeLedger struct {
	mu           sync.Mutex
	balances     map[int64]int64
	transactions []ledger.Transaction
	err          error
}

func newFakeLedger(balances map[int64]int64) *fakeLedger {
	if balances == nil {
		balances = map[int64]int64{}
	}
	return &fakeLedger{balances: balances}
}

func (l *fakeLedger) GetAccount(ctx context.Context, userID int64) (*ledger.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &ledger.Account{ID: userID, Balance: l.balances[userID]}, nil
}

func (l *fakeLedger) CreateTransaction(ctx context.Context, tx ledger.Transaction) (*ledger.TransactionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.balances[tx.FromAccountID] < tx.Amount {
		return nil, fmt.Errorf("%w: not enough buzz", errs.ErrInsufficientFunds)
	}
	l.balances[tx.FromAccountID] -= tx.Amount
	l.balances[tx.ToAccountID] += tx.Amount
	l.transactions = append(l.transactions, tx)
	return &ledger.TransactionResult{TransactionID: fmt.Sprintf("tx_%d", len(l.transactions))}, nil
}

func (l *fakeLedger) charges() []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.Transaction(nil), l.transactions...)
}

type memoryCache struct {
	mu          sync.Mutex
	tiers       map[int64][]*models.TierWithCount
	memberships map[[2]int64]*models.ClubMembership
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		tiers:       map[int64][]*models.TierWithCount{},
		memberships: map[[2]int64]*models.ClubMembership{},
	}
}

func (c *memoryCache) GetClubTiers(ctx context.Context, clubID int64) ([]*models.TierWithCount, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tiers[clubID]
	return t, ok
}

func (c *memoryCache) SetClubTiers(ctx context.Context, clubID int64, tiers []*models.TierWithCount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers[clubID] = tiers
}

func (c *memoryCache) InvalidateClubTiers(ctx context.Context, clubID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tiers, clubID)
	c.invalidated = append(c.invalidated, fmt.Sprintf("tiers:%d", clubID))
}

func (c *memoryCache) GetMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.memberships[[2]int64{clubID, userID}]
	return m, ok
}

func (c *memoryCache) SetMembership(ctx context.Context, clubID, userID int64, m *models.ClubMembership) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memberships[[2]int64{clubID, userID}] = m
}

func (c *memoryCache) InvalidateMembership(ctx context.Context, clubID, userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.memberships, [2]int64{clubID, userID})
	c.invalidated = append(c.invalidated, fmt.Sprintf("membership:%d:%d", clubID, userID))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type countingRecorder struct {
	mu          sync.Mutex
	transitions map[string]int
	charges     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{transitions: map[string]int{}, charges: map[string]int{}}
}

func (r *countingRecorder) MembershipTransition(transition string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[transition]++
}

func (r *countingRecorder) LedgerCharge(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges[outcome]++
}

// ============================================================================
// Fixture
// ============================================================================

// fixedNow is 2024-01-15 12:00 UTC
var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *fakeStore
	ledger    *fakeLedger
	cache     *memoryCache
	publisher *recordingPublisher
	metrics   *countingRecorder
	now       time.Time
	deps      Deps
}

func newFixture() *fixture {
	f := &fixture{
		store:     newFakeStore(),
		ledger:    newFakeLedger(nil),
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
		metrics:   newCountingRecorder(),
		now:       fixedNow,
	}
	f.deps = Deps{
		Store:     f.store,
		Ledger:    f.ledger,
		Cache:     f.cache,
		Publisher: f.publisher,
		Metrics:   f.metrics,
		Now:       func() time.Time { return f.now },
	}
	return f
}

var errBoom = errors.New("boom")

func int64Ptr(v int64) *int64 { return &v }

func viewerFor(userID int64) *models.Viewer {
	return &models.Viewer{UserID: userID}
}
