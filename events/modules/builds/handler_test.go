package builds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buildscout/buildcat-backend/model"
)

type fakeBuildService struct {
	requests []model.BuildIngestRequest
	err      error
}

func (f *fakeBuildService) CreateBuild(_ context.Context, req model.BuildIngestRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

func TestHandleBuildSubmitted(t *testing.T) {
	msg := []byte(`{
		"event_type": "build.submitted",
		"event_id": "7f9c2d8e-1a4b-4c3d-9e8f-0a1b2c3d4e5f",
		"event_time": "2024-07-30T12:00:00Z",
		"schema_version": "v1",
		"build": {
			"version": "4.3.0",
			"branch": "daily",
			"build_hash": "cb886aba06d5",
			"commit_time": "2024-07-30T11:12:13Z"
		},
		"artifact": {
			"url": "https://cdn.example.org/builds/4.3.0.zip",
			"platform": "linux",
			"architecture": "x86_64",
			"size_bytes": 355044661
		}
	}`)

	service := &fakeBuildService{}
	if err := HandleBuildSubmittedWithService(context.Background(), msg, service); err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	if len(service.requests) != 1 {
		t.Fatalf("Expected 1 ingest request, got %d", len(service.requests))
	}
	req := service.requests[0]
	if req.Version != "4.3.0" || req.Branch != "daily" || req.BuildHash != "cb886aba06d5" {
		t.Errorf("Build identity not carried over: %+v", req)
	}
	want := time.Date(2024, 7, 30, 11, 12, 13, 0, time.UTC)
	if !req.CommitTime.Equal(want) {
		t.Errorf("Expected commit time %s, got %s", want, req.CommitTime)
	}
	if req.Platform != "linux" || req.Architecture != "x86_64" || req.SizeBytes != 355044661 {
		t.Errorf("Artifact fields not carried over: %+v", req)
	}
}

func TestHandleBuildSubmittedRejectsIncompleteEvents(t *testing.T) {
	cases := []struct {
		name string
		msg  string
	}{
		{
			name: "missing version",
			msg:  `{"build": {"branch": "daily", "commit_time": "2024-07-30T11:12:13Z"}}`,
		},
		{
			name: "missing branch",
			msg:  `{"build": {"version": "4.3.0", "commit_time": "2024-07-30T11:12:13Z"}}`,
		},
		{
			name: "missing commit time",
			msg:  `{"build": {"version": "4.3.0", "branch": "daily"}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &fakeBuildService{}
			err := HandleBuildSubmittedWithService(context.Background(), []byte(tc.msg), service)
			if err == nil {
				t.Fatal("Expected an error for an incomplete event")
			}
			if len(service.requests) != 0 {
				t.Errorf("Service called despite invalid event: %v", service.requests)
			}
		})
	}
}

func TestHandleBuildSubmittedMalformedJSON(t *testing.T) {
	service := &fakeBuildService{}
	if err := HandleBuildSubmittedWithService(context.Background(), []byte("not json"), service); err == nil {
		t.Fatal("Expected an error for malformed JSON")
	}
}

func TestHandleBuildSubmittedServiceError(t *testing.T) {
	service := &fakeBuildService{err: errors.New("catalog unavailable")}
	msg := []byte(`{"build": {"version": "4.3.0", "branch": "daily", "commit_time": "2024-07-30T11:12:13Z"}}`)

	err := HandleBuildSubmittedWithService(context.Background(), msg, service)
	if err == nil || !errors.Is(err, service.err) {
		t.Fatalf("Expected wrapped service error, got %v", err)
	}
}
