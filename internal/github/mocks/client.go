// Package mocks provides a testify mock of the github.Client interface
// for service and config tests.
package mocks

import (
	"context"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func NewMockClient(t *testing.T) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockClient) ListOpenIssuesByLabel(ctx context.Context, owner, repo, label string, limit int) ([]*gh.Issue, error) {
	args := m.Called(ctx, owner, repo, label, limit)
	issues, _ := args.Get(0).([]*gh.Issue)
	return issues, args.Error(1)
}

func (m *MockClient) CreateIssue(ctx context.Context, owner, repo, title, body string, assignees, labels []string) (*gh.Issue, error) {
	args := m.Called(ctx, owner, repo, title, body, assignees, labels)
	issue, _ := args.Get(0).(*gh.Issue)
	return issue, args.Error(1)
}

func (m *MockClient) UpdateIssue(ctx context.Context, owner, repo string, number int, title, body string) (*gh.Issue, error) {
	args := m.Called(ctx, owner, repo, number, title, body)
	issue, _ := args.Get(0).(*gh.Issue)
	return issue, args.Error(1)
}

func (m *MockClient) GetCommit(ctx context.Context, owner, repo, ref string) (*gh.RepositoryCommit, error) {
	args := m.Called(ctx, owner, repo, ref)
	commit, _ := args.Get(0).(*gh.RepositoryCommit)
	return commit, args.Error(1)
}

func (m *MockClient) ListPushCollaborators(ctx context.Context, owner, repo string) ([]string, error) {
	args := m.Called(ctx, owner, repo)
	logins, _ := args.Get(0).([]string)
	return logins, args.Error(1)
}

func (m *MockClient) CreateCommitComment(ctx context.Context, owner, repo, sha, body string) error {
	args := m.Called(ctx, owner, repo, sha, body)
	return args.Error(0)
}

func (m *MockClient) ListArtifactsByName(ctx context.Context, owner, repo, name string) ([]*gh.Artifact, error) {
	args := m.Called(ctx, owner, repo, name)
	artifacts, _ := args.Get(0).([]*gh.Artifact)
	return artifacts, args.Error(1)
}

func (m *MockClient) DownloadArtifact(ctx context.Context, owner, repo string, artifactID, maxBytes int64) ([]byte, error) {
	args := m.Called(ctx, owner, repo, artifactID, maxBytes)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, string, error) {
	args := m.Called(ctx, owner, repo, path, ref)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockClient) CreateOrUpdateFile(ctx context.Context, owner, repo, path, branch, message, content string, fileSHA *string, committer *gh.CommitAuthor) error {
	args := m.Called(ctx, owner, repo, path, branch, message, content, fileSHA, committer)
	return args.Error(0)
}

func (m *MockClient) CreateCheckRun(ctx context.Context, owner, repo string, opts gh.CreateCheckRunOptions) (*gh.CheckRun, error) {
	args := m.Called(ctx, owner, repo, opts)
	run, _ := args.Get(0).(*gh.CheckRun)
	return run, args.Error(1)
}
