// Package testutil 提供测试用的内存仓储与替身
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"collab-novel-api/internal/application/generation"
	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
)

// Store 内存存储，模拟唯一约束
type Store struct {
	mu         sync.Mutex
	Users      map[string]*entity.User
	Inputs     map[string]*entity.StoryInput
	Iterations []*entity.NovelIteration
	Feedback   []*entity.Feedback

	// Err 非空时所有仓储调用返回该错误
	Err error
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		Users:  make(map[string]*entity.User),
		Inputs: make(map[string]*entity.StoryInput),
	}
}

// Transactor 直接执行，失败时不做回滚
// CommitErr 非空时模拟 fn 成功但提交失败
type Transactor struct {
	Calls     int
	CommitErr error
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return t.CommitErr
}

// UserRepo 内存用户仓储
type UserRepo struct{ S *Store }

func (r UserRepo) Create(_ context.Context, user *entity.User) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return r.S.Err
	}
	for _, u := range r.S.Users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	cp := *user
	r.S.Users[user.ID] = &cp
	return nil
}

func (r UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return nil, r.S.Err
	}
	if u, ok := r.S.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return nil, r.S.Err
	}
	email = entity.NormalizeEmail(email)
	for _, u := range r.S.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r UserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return false, r.S.Err
	}
	for _, u := range r.S.Users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return false, r.S.Err
	}
	email = entity.NormalizeEmail(email)
	for _, u := range r.S.Users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// StoryInputRepo 内存故事参数仓储
type StoryInputRepo struct{ S *Store }

func (r StoryInputRepo) Create(_ context.Context, input *entity.StoryInput) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return r.S.Err
	}
	cp := *input
	r.S.Inputs[input.ID] = &cp
	return nil
}

func (r StoryInputRepo) GetByID(_ context.Context, id string) (*entity.StoryInput, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return nil, r.S.Err
	}
	if in, ok := r.S.Inputs[id]; ok {
		cp := *in
		return &cp, nil
	}
	return nil, nil
}

// IterationRepo 内存迭代仓储
type IterationRepo struct{ S *Store }

func (r IterationRepo) Create(_ context.Context, it *entity.NovelIteration) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return r.S.Err
	}
	for _, existing := range r.S.Iterations {
		if existing.IterationNumber == it.IterationNumber {
			return repository.ErrDuplicateKey
		}
	}
	cp := *it
	r.S.Iterations = append(r.S.Iterations, &cp)
	return nil
}

func (r IterationRepo) sorted() []*entity.NovelIteration {
	out := append([]*entity.NovelIteration(nil), r.S.Iterations...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].IterationNumber > out[j].IterationNumber
	})
	return out
}

func (r IterationRepo) GetLatest(_ context.Context) (*entity.NovelIteration, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return nil, r.S.Err
	}
	all := r.sorted()
	if len(all) == 0 {
		return nil, nil
	}
	cp := *all[0]
	return &cp, nil
}

func (r IterationRepo) MaxIterationNumber(_ context.Context) (int, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return 0, r.S.Err
	}
	maxNumber := 0
	for _, it := range r.S.Iterations {
		if it.IterationNumber > maxNumber {
			maxNumber = it.IterationNumber
		}
	}
	return maxNumber, nil
}

func (r IterationRepo) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.NovelIteration], error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return nil, r.S.Err
	}
	all := r.sorted()
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit()
	if end > len(all) {
		end = len(all)
	}
	return repository.NewPagedResult(all[start:end], int64(len(all)), p), nil
}

// FeedbackRepo 内存反馈仓储
type FeedbackRepo struct{ S *Store }

func (r FeedbackRepo) Create(_ context.Context, fb *entity.Feedback) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.Err != nil {
		return r.S.Err
	}
	cp := *fb
	r.S.Feedback = append(r.S.Feedback, &cp)
	return nil
}

// Generator 可编排结果的生成替身
type Generator struct {
	mu      sync.Mutex
	Output  string
	Err     error
	Prompts []string
	Params  []generation.Params
}

// ErrUpstream 常用的上游失败错误
var ErrUpstream = errors.New("upstream: 503 service unavailable")

func (g *Generator) Generate(_ context.Context, prompt string, opts ...generation.Option) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	params := generation.Params{Purpose: generation.PurposeNovel}
	for _, opt := range opts {
		opt(&params)
	}
	g.Prompts = append(g.Prompts, prompt)
	g.Params = append(g.Params, params)
	if g.Err != nil {
		return "", &generation.GenerationError{Attempts: 3, Err: g.Err}
	}
	return g.Output, nil
}

// Publisher 记录已发布事件
type Publisher struct {
	mu     sync.Mutex
	Events []string
	Err    error
}

func (p *Publisher) PublishEvent(_ context.Context, eventType string, _ any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.Events = append(p.Events, eventType)
	return "0-1", nil
}

// Types 返回已发布事件类型的副本
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Events...)
}
