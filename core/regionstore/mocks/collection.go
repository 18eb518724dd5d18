package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection is a mock implementation of regionstore.Collection
type Collection struct {
	mock.Mock
}

func (m *Collection) FindByID(ctx context.Context, id primitive.ObjectID) (bson.Raw, error) {
	args := m.Called(ctx, id)
	raw, _ := args.Get(0).(bson.Raw)
	return raw, args.Error(1)
}

func (m *Collection) FindByWorld(ctx context.Context, world string) ([]bson.Raw, error) {
	args := m.Called(ctx, world)
	raws, _ := args.Get(0).([]bson.Raw)
	return raws, args.Error(1)
}

func (m *Collection) Upsert(ctx context.Context, world, name string, doc bson.D) (bson.Raw, error) {
	args := m.Called(ctx, world, name, doc)
	raw, _ := args.Get(0).(bson.Raw)
	return raw, args.Error(1)
}

func (m *Collection) Delete(ctx context.Context, world, name string) (bson.Raw, error) {
	args := m.Called(ctx, world, name)
	raw, _ := args.Get(0).(bson.Raw)
	return raw, args.Error(1)
}

func (m *Collection) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
