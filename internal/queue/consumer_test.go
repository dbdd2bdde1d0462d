package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{Dir: dir}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.handleMessage([]byte(`{"type":"review.added","movie_id":"m1","movie_name":"Inception","review_id":"r1","actor_id":"u1","num_reviews":1,"occurred_at":"`+at.Format(time.RFC3339)+`"}`)))
	require.NoError(t, c.handleMessage([]byte(`{"type":"movie.deleted","movie_id":"m1","occurred_at":"`+at.Format(time.RFC3339)+`"}`)))

	raw, err := os.ReadFile(filepath.Join(dir, "catalog.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `[2024-03-01T12:00:00Z] review.added | movie_id=m1 | movie="Inception" | review_id=r1 | actor_id=u1 | reviews=1`, lines[0])
	assert.Equal(t, `[2024-03-01T12:00:00Z] movie.deleted | movie_id=m1 | reviews=0`, lines[1])
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	c := &Consumer{Dir: t.TempDir()}
	assert.Error(t, c.handleMessage([]byte("{not json")))
	assert.Error(t, c.handleMessage([]byte(`{"type":"movie.created"}`)))
}
