package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/api"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/config"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

func TestRunAnalyticsReadsCompletedSessions(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store.Kind = config.StoreSQLite
	cfg.Store.DSN = "file:" + filepath.Join(t.TempDir(), "a.db")

	store, err := openStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	answers := models.Answers{}
	for id := 1; id <= services.TotalQuestions; id++ {
		answers[id] = 3
	}
	at := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	done := models.SessionState{Started: true, Completed: true, Answers: answers,
		Result: &models.Assessment{Fit: models.FitScore{Value: 80, Level: "excellent"}, SubmittedAt: at}}
	require.NoError(t, store.PutSession(ctx, &api.SessionRecord{ID: "s1", State: done, CreatedAt: at, UpdatedAt: at}))
	require.NoError(t, store.PutSession(ctx, &api.SessionRecord{ID: "s2", State: models.SessionState{Started: true}, CreatedAt: at, UpdatedAt: at}))
	require.NoError(t, store.Close())

	var out bytes.Buffer
	require.NoError(t, runAnalytics(ctx, cfg, &out))

	var summary services.AnalyticsSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, map[string]int{"excellent": 1}, summary.FitLevels)
	assert.Len(t, summary.Items, services.TotalQuestions)
	assert.Len(t, summary.Reliability, len(models.Dimensions))
	assert.Equal(t, []services.AnalyticsTimeseries{{Date: "2025-06-02", Count: 1}}, summary.Timeseries)
}

func TestRunAnalyticsNeedsDatabase(t *testing.T) {
	cfg := testConfig(t)
	require.Error(t, runAnalytics(context.Background(), cfg, &bytes.Buffer{}))
}
