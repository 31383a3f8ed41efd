package svc

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/pkg"
	"github.com/stretchr/testify/mock"
	"io"
	"time"
)

type buildRepoMock struct{ mock.Mock }

func (m *buildRepoMock) FindByID(ctx context.Context, id string) (app.Build, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(app.Build), args.Error(1)
}

func (m *buildRepoMock) Save(ctx context.Context, b app.Build) error {
	return m.Called(ctx, b).Error(0)
}

type jobRepoMock struct{ mock.Mock }

func (m *jobRepoMock) FindAll(ctx context.Context) ([]app.Job, error) {
	args := m.Called(ctx)
	return args.Get(0).([]app.Job), args.Error(1)
}

func (m *jobRepoMock) FindByName(ctx context.Context, name string) (app.Job, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(app.Job), args.Error(1)
}

type promoRepoMock struct{ mock.Mock }

func (m *promoRepoMock) FindAll(ctx context.Context) ([]app.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]app.Promotion), args.Error(1)
}

func (m *promoRepoMock) FindByID(ctx context.Context, id uint64) (app.Promotion, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(app.Promotion), args.Error(1)
}

func (m *promoRepoMock) Claim(ctx context.Context, at time.Time) (app.Promotion, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(app.Promotion), args.Error(1)
}

func (m *promoRepoMock) Add(ctx context.Context, p app.Promotion) (app.Promotion, bool, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(app.Promotion), args.Bool(1), args.Error(2)
}

func (m *promoRepoMock) Update(ctx context.Context, p app.Promotion) (app.Promotion, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(app.Promotion), args.Error(1)
}

func (m *promoRepoMock) FailRunning(ctx context.Context, errorMsg string, at time.Time) (int64, error) {
	args := m.Called(ctx, errorMsg, at)
	return args.Get(0).(int64), args.Error(1)
}

type nodeMock struct{ mock.Mock }

func (m *nodeMock) Execute(ctx context.Context, req app.NodeRequest) (app.NodeResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(app.NodeResponse), args.Error(1)
}

type registryStub map[string]app.NodeSvc

func (r registryStub) Node(name string) (app.NodeSvc, error) {
	n, ok := r[name]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return n, nil
}

type checkoutMock struct{ mock.Mock }

func (m *checkoutMock) Run(ctx context.Context, req app.CheckoutRequest, console io.Writer) error {
	args := m.Called(ctx, req, console)
	if console != nil {
		_, _ = io.WriteString(console, "Complete\n")
	}
	return args.Error(0)
}

type hookMock struct{ mock.Mock }

func (m *hookMock) Promote(ctx context.Context, req pkg.HookPromoteReq) (pkg.HookPromoteResp, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(pkg.HookPromoteResp), args.Error(1)
}

type publisherStub struct{ events []app.PromotionEvent }

func (p *publisherStub) Publish(_ context.Context, ev app.PromotionEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *publisherStub) types() []string {
	res := make([]string, len(p.events))
	for i, ev := range p.events {
		res[i] = ev.Type
	}
	return res
}

type archiveStub struct{ archived []uint64 }

func (a *archiveStub) Archive(_ context.Context, p app.Promotion) (string, error) {
	a.archived = append(a.archived, p.ID)
	return "key", nil
}
