package service

import (
	"context"
	"fmt"
	"sync"

	"papertrade/internal/entity"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestLogger() *logger.Logger {
	l, err := logger.New("error", "console")
	if err != nil {
		panic(err)
	}
	return l
}

// In-memory repository fakes. They mirror the persistence semantics the
// services rely on: record-not-found errors, rollback on transaction
// failure, and one interaction per (user, post).

type fakeLedger struct {
	mu       sync.Mutex
	users    map[uint]*entity.User
	holdings map[string]*entity.StockHolding
	txns     []entity.Transaction
	cashTxns []entity.CashTransaction
	posts    []*entity.TradingPost
	nextID   uint
}

func newFakeLedger(users ...*entity.User) *fakeLedger {
	l := &fakeLedger{
		users:    map[uint]*entity.User{},
		holdings: map[string]*entity.StockHolding{},
		nextID:   1,
	}
	for _, u := range users {
		l.users[u.ID] = u
	}
	return l
}

func holdingKey(userID uint, ticker string) string {
	return fmt.Sprintf("%d:%s", userID, ticker)
}

func (l *fakeLedger) WithinTransaction(ctx context.Context, fn func(repository.LedgerRepository) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	backupUsers := map[uint]entity.User{}
	for id, u := range l.users {
		backupUsers[id] = *u
	}
	backupHoldings := map[string]entity.StockHolding{}
	for k, h := range l.holdings {
		backupHoldings[k] = *h
	}
	backupTxns := len(l.txns)
	backupCash := len(l.cashTxns)
	backupPosts := len(l.posts)

	if err := fn(l); err != nil {
		for id := range l.users {
			if orig, ok := backupUsers[id]; ok {
				*l.users[id] = orig
			}
		}
		l.holdings = map[string]*entity.StockHolding{}
		for k, h := range backupHoldings {
			restored := h
			l.holdings[k] = &restored
		}
		l.txns = l.txns[:backupTxns]
		l.cashTxns = l.cashTxns[:backupCash]
		l.posts = l.posts[:backupPosts]
		return err
	}
	return nil
}

func (l *fakeLedger) FindUserForUpdate(ctx context.Context, userID uint) (*entity.User, error) {
	u, ok := l.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (l *fakeLedger) UpdateBalance(ctx context.Context, userID uint, balance float64) error {
	u, ok := l.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Balance = balance
	return nil
}

func (l *fakeLedger) FindHolding(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error) {
	h, ok := l.holdings[holdingKey(userID, ticker)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return h, nil
}

func (l *fakeLedger) FindHoldingForUpdate(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error) {
	return l.FindHolding(ctx, userID, ticker)
}

func (l *fakeLedger) ListHoldings(ctx context.Context, userID uint) ([]entity.StockHolding, error) {
	var result []entity.StockHolding
	for _, h := range l.holdings {
		if h.UserID == userID {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (l *fakeLedger) SaveHolding(ctx context.Context, holding *entity.StockHolding) error {
	if holding.ID == 0 {
		holding.ID = l.nextID
		l.nextID++
	}
	l.holdings[holdingKey(holding.UserID, holding.Ticker)] = holding
	return nil
}

func (l *fakeLedger) DeleteHolding(ctx context.Context, holdingID uint) error {
	for k, h := range l.holdings {
		if h.ID == holdingID {
			delete(l.holdings, k)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (l *fakeLedger) UpdateHoldingPrice(ctx context.Context, holdingID uint, price float64) error {
	for _, h := range l.holdings {
		if h.ID == holdingID {
			h.CurrentPrice = price
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (l *fakeLedger) CreateTransaction(ctx context.Context, txn *entity.Transaction) error {
	txn.ID = l.nextID
	l.nextID++
	l.txns = append(l.txns, *txn)
	return nil
}

func (l *fakeLedger) ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error) {
	var result []entity.Transaction
	for i := len(l.txns) - 1; i >= 0 && len(result) < limit; i-- {
		if l.txns[i].UserID == userID {
			result = append(result, l.txns[i])
		}
	}
	return result, nil
}

func (l *fakeLedger) CreateCashTransaction(ctx context.Context, txn *entity.CashTransaction) error {
	txn.ID = l.nextID
	l.nextID++
	l.cashTxns = append(l.cashTxns, *txn)
	return nil
}

func (l *fakeLedger) ListCashTransactions(ctx context.Context, userID uint, limit int) ([]entity.CashTransaction, error) {
	var result []entity.CashTransaction
	for i := len(l.cashTxns) - 1; i >= 0 && len(result) < limit; i-- {
		if l.cashTxns[i].UserID == userID {
			result = append(result, l.cashTxns[i])
		}
	}
	return result, nil
}

func (l *fakeLedger) CreatePost(ctx context.Context, post *entity.TradingPost) error {
	post.ID = l.nextID
	l.nextID++
	l.posts = append(l.posts, post)
	return nil
}

func (l *fakeLedger) holding(userID uint, ticker string) *entity.StockHolding {
	return l.holdings[holdingKey(userID, ticker)]
}

type fakeQuotes struct {
	infos map[string]*dto.StockInfo
	errs  map[string]error
	calls int
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{infos: map[string]*dto.StockInfo{}, errs: map[string]error{}}
}

func (q *fakeQuotes) setQuote(ticker string, price float64) {
	q.infos[ticker] = &dto.StockInfo{Ticker: ticker, Name: ticker + " Inc.", CurrentPrice: price}
}

func (q *fakeQuotes) GetStockInfo(ctx context.Context, ticker string) (*dto.StockInfo, error) {
	q.calls++
	if err, ok := q.errs[ticker]; ok {
		return nil, err
	}
	if info, ok := q.infos[ticker]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
}

func (q *fakeQuotes) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	info, err := q.GetStockInfo(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return info.CurrentPrice, nil
}

func (q *fakeQuotes) GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error) {
	return nil, nil
}

func (q *fakeQuotes) Search(ctx context.Context, query string) ([]dto.StockInfo, error) {
	return nil, nil
}

func (q *fakeQuotes) GetMarketSummary(ctx context.Context) ([]dto.MarketIndex, error) {
	return nil, nil
}

func (q *fakeQuotes) GetTrendingStocks(ctx context.Context) []dto.StockInfo { return nil }
func (q *fakeQuotes) GetPopularStocks(ctx context.Context) []dto.StockInfo  { return nil }
func (q *fakeQuotes) StartRefresher() error                                 { return nil }
func (q *fakeQuotes) StopRefresher()                                        {}

type fakeUsers struct {
	users  map[uint]*entity.User
	nextID uint
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]*entity.User{}, nextID: 1}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, user *entity.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByNetID(ctx context.Context, netID string) (*entity.User, error) {
	for _, u := range f.users {
		if u.NetID == netID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) SearchByNetID(ctx context.Context, term string, excludeID uint) ([]entity.User, error) {
	var result []entity.User
	for _, u := range f.users {
		if u.ID != excludeID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (f *fakeUsers) Update(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

type followEdge struct{ follower, followed uint }

type fakeSocial struct {
	follows      map[followEdge]bool
	posts        map[uint]*entity.TradingPost
	comments     []*entity.Comment
	interactions map[uint]*entity.PostInteraction
	nextID       uint
}

func newFakeSocial() *fakeSocial {
	return &fakeSocial{
		follows:      map[followEdge]bool{},
		posts:        map[uint]*entity.TradingPost{},
		interactions: map[uint]*entity.PostInteraction{},
		nextID:       1,
	}
}

func (f *fakeSocial) addPost(post *entity.TradingPost) *entity.TradingPost {
	post.ID = f.nextID
	f.nextID++
	f.posts[post.ID] = post
	return post
}

func (f *fakeSocial) CreateFollow(ctx context.Context, followerID, followedID uint) error {
	f.follows[followEdge{followerID, followedID}] = true
	return nil
}

func (f *fakeSocial) DeleteFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	edge := followEdge{followerID, followedID}
	if !f.follows[edge] {
		return false, nil
	}
	delete(f.follows, edge)
	return true, nil
}

func (f *fakeSocial) FollowExists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return f.follows[followEdge{followerID, followedID}], nil
}

func (f *fakeSocial) ListFollowing(ctx context.Context, userID uint) ([]entity.User, error) {
	var result []entity.User
	for edge := range f.follows {
		if edge.follower == userID {
			result = append(result, entity.User{ID: edge.followed})
		}
	}
	return result, nil
}

func (f *fakeSocial) ListFollowers(ctx context.Context, userID uint) ([]entity.User, error) {
	var result []entity.User
	for edge := range f.follows {
		if edge.followed == userID {
			result = append(result, entity.User{ID: edge.follower})
		}
	}
	return result, nil
}

func (f *fakeSocial) FindPost(ctx context.Context, id uint) (*entity.TradingPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeSocial) ListPostsByUser(ctx context.Context, userID uint, publicOnly bool) ([]entity.TradingPost, error) {
	var result []entity.TradingPost
	for _, p := range f.posts {
		if p.UserID == userID && (!publicOnly || p.IsPublic) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeSocial) FollowedPosts(ctx context.Context, userID uint) ([]entity.TradingPost, error) {
	var result []entity.TradingPost
	for _, p := range f.posts {
		if p.IsPublic && f.follows[followEdge{userID, p.UserID}] {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeSocial) PopularPosts(ctx context.Context, excludeUserIDs []uint, limit int) ([]entity.TradingPost, error) {
	excluded := map[uint]bool{}
	for _, id := range excludeUserIDs {
		excluded[id] = true
	}
	var result []entity.TradingPost
	for _, p := range f.posts {
		if p.IsPublic && !excluded[p.UserID] && len(result) < limit {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeSocial) SavePost(ctx context.Context, post *entity.TradingPost) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakeSocial) CreateComment(ctx context.Context, comment *entity.Comment) error {
	comment.ID = f.nextID
	f.nextID++
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeSocial) FindComment(ctx context.Context, id uint) (*entity.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSocial) ListComments(ctx context.Context, postID uint) ([]entity.Comment, error) {
	var result []entity.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeSocial) FindInteraction(ctx context.Context, userID, postID uint) (*entity.PostInteraction, error) {
	for _, i := range f.interactions {
		if i.UserID == userID && i.PostID == postID {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSocial) CreateInteraction(ctx context.Context, interaction *entity.PostInteraction) error {
	interaction.ID = f.nextID
	f.nextID++
	f.interactions[interaction.ID] = interaction
	return nil
}

func (f *fakeSocial) UpdateInteraction(ctx context.Context, interaction *entity.PostInteraction) error {
	f.interactions[interaction.ID] = interaction
	return nil
}

func (f *fakeSocial) DeleteInteraction(ctx context.Context, id uint) error {
	delete(f.interactions, id)
	return nil
}

func (f *fakeSocial) CountInteractions(ctx context.Context, postID uint, interactionType string) (int64, error) {
	var count int64
	for _, i := range f.interactions {
		if i.PostID == postID && i.InteractionType == interactionType {
			count++
		}
	}
	return count, nil
}

type fakeProvider struct {
	quotes  map[string]*dto.StockInfo
	history map[string][]dto.HistoricalBar
	err     error
	calls   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{quotes: map[string]*dto.StockInfo{}, history: map[string][]dto.HistoricalBar{}}
}

func (p *fakeProvider) GetQuote(ctx context.Context, ticker string) (*dto.StockInfo, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	info, ok := p.quotes[ticker]
	if !ok {
		return nil, repository.ErrSymbolNotFound
	}
	return info, nil
}

func (p *fakeProvider) GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	bars, ok := p.history[ticker]
	if !ok {
		return nil, repository.ErrSymbolNotFound
	}
	return bars, nil
}

type fakeSnapshots struct {
	snapshots map[string]*entity.QuoteSnapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snapshots: map[string]*entity.QuoteSnapshot{}}
}

func (s *fakeSnapshots) Upsert(ctx context.Context, ticker string, price float64, data []byte) error {
	s.snapshots[ticker] = &entity.QuoteSnapshot{Ticker: ticker, Price: price, Data: datatypes.JSON(data)}
	return nil
}

func (s *fakeSnapshots) Find(ctx context.Context, ticker string) (*entity.QuoteSnapshot, error) {
	snap, ok := s.snapshots[ticker]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return snap, nil
}
