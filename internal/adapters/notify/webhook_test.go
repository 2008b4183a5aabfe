package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/notify"
	diff "github.com/BigBang1112/tmwrr-sub000/internal/domain/diff"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/internal/jobs"
)

type capturedPost struct {
	Content string `json:"content"`
}

func newSink(t *testing.T, status int) (*httptest.Server, *[]capturedPost) {
	t.Helper()
	var posts []capturedPost
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p capturedPost
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		posts = append(posts, p)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &posts
}

func TestWebhook_Report(t *testing.T) {
	srv, posts := newSink(t, http.StatusNoContent)
	w := notify.NewWebhook(srv.URL)

	diffs := []jobs.CategoryDiff{
		{
			Category: scores.Race,
			Maps: []jobs.MapDiff{
				{
					Map: model.MapRef{UID: "RaceA1", Name: "Race A-1"},
					Diff: diff.Diff{
						New:      []model.Entry{{Rank: 1, Score: 39800, Login: "eve"}},
						Improved: []diff.Change{{}},
					},
				},
			},
		},
	}

	require.NoError(t, w.Report(context.Background(), diffs))
	require.Len(t, *posts, 1)
	content := (*posts)[0].Content
	assert.Contains(t, content, "race")
	assert.Contains(t, content, "1 new")
	assert.Contains(t, content, "1 improved")
}

func TestWebhook_Report_Empty(t *testing.T) {
	srv, posts := newSink(t, http.StatusNoContent)
	w := notify.NewWebhook(srv.URL)

	require.NoError(t, w.Report(context.Background(), nil))
	assert.Empty(t, *posts)
}

func TestWebhook_Alert(t *testing.T) {
	srv, posts := newSink(t, http.StatusOK)
	w := notify.NewWebhook(srv.URL)

	require.NoError(t, w.Alert(context.Background(), "every category fetch failed"))
	require.Len(t, *posts, 1)
	assert.Contains(t, (*posts)[0].Content, ":warning:")
	assert.Contains(t, (*posts)[0].Content, "every category fetch failed")
}

func TestWebhook_RejectedStatus(t *testing.T) {
	srv, _ := newSink(t, http.StatusTooManyRequests)
	w := notify.NewWebhook(srv.URL)

	assert.Error(t, w.Alert(context.Background(), "throttled"))
}

func TestNop(t *testing.T) {
	n := notify.Nop{}
	assert.NoError(t, n.Report(context.Background(), []jobs.CategoryDiff{{Category: scores.Race}}))
	assert.NoError(t, n.Alert(context.Background(), "ignored"))
}
