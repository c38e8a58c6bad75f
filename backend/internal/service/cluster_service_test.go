package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestClusterService_ListUsesCache(t *testing.T) {
	store := newMockStore()
	store.clusters = testClusters()
	cache := newMockCache()
	svc := NewClusterService(store.repository(), cache, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		list, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != len(testClusters()) {
			t.Fatalf("expected %d clusters, got %d", len(testClusters()), len(list))
		}
	}
	if store.clusterListN != 1 {
		t.Errorf("expected a single repository read, got %d", store.clusterListN)
	}
	if _, ok := cache.data[clusterCacheKey]; !ok {
		t.Error("expected the taxonomy to be cached")
	}
}

func TestClusterService_ListWithoutCache(t *testing.T) {
	store := newMockStore()
	store.clusters = testClusters()
	svc := NewClusterService(store.repository(), nil, 0, zap.NewNop())

	resp, err := svc.ListResponses(context.Background())
	if err != nil {
		t.Fatalf("ListResponses failed: %v", err)
	}
	if len(resp) != 4 || resp[2].MainCluster != "Serial Number BAPP" || resp[2].NamaOpsi == "" {
		t.Errorf("unexpected responses %+v", resp)
	}

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.clusterListN != 2 {
		t.Errorf("expected every call to hit the repository, got %d", store.clusterListN)
	}
}
