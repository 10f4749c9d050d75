package smt

// Hand-written in the shape mockgen would generate for the Store
// interface, grounded on trillian's storage/cache/subtree_cache_test.go
// which mocks its node storage the same way.

import (
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockStore is a mock of the Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore creates a new mock instance.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

func (m *MockStore) GetBranch(key BranchKey) (BranchNode, bool, error) {
	ret := m.ctrl.Call(m, "GetBranch", key)
	return ret[0].(BranchNode), ret[1].(bool), retErr(ret[2])
}

func (mr *MockStoreMockRecorder) GetBranch(key interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBranch", reflect.TypeOf((*MockStore)(nil).GetBranch), key)
}

func (m *MockStore) GetLeaf(key H256) (H256, bool, error) {
	ret := m.ctrl.Call(m, "GetLeaf", key)
	return ret[0].(H256), ret[1].(bool), retErr(ret[2])
}

func (mr *MockStoreMockRecorder) GetLeaf(key interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLeaf", reflect.TypeOf((*MockStore)(nil).GetLeaf), key)
}

func (m *MockStore) InsertBranch(key BranchKey, node BranchNode) error {
	ret := m.ctrl.Call(m, "InsertBranch", key, node)
	return retErr(ret[0])
}

func (mr *MockStoreMockRecorder) InsertBranch(key, node interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertBranch", reflect.TypeOf((*MockStore)(nil).InsertBranch), key, node)
}

func (m *MockStore) InsertLeaf(key, value H256) error {
	ret := m.ctrl.Call(m, "InsertLeaf", key, value)
	return retErr(ret[0])
}

func (mr *MockStoreMockRecorder) InsertLeaf(key, value interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertLeaf", reflect.TypeOf((*MockStore)(nil).InsertLeaf), key, value)
}

func (m *MockStore) RemoveBranch(key BranchKey) error {
	ret := m.ctrl.Call(m, "RemoveBranch", key)
	return retErr(ret[0])
}

func (mr *MockStoreMockRecorder) RemoveBranch(key interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveBranch", reflect.TypeOf((*MockStore)(nil).RemoveBranch), key)
}

func (m *MockStore) RemoveLeaf(key H256) error {
	ret := m.ctrl.Call(m, "RemoveLeaf", key)
	return retErr(ret[0])
}

func (mr *MockStoreMockRecorder) RemoveLeaf(key interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveLeaf", reflect.TypeOf((*MockStore)(nil).RemoveLeaf), key)
}

// retErr converts a ctrl.Call return slot (nil or an error) back to error.
func retErr(v interface{}) error {
	if v == nil {
		return nil
	}
	return v.(error)
}
