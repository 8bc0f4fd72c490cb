package courseinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecessbot/models"
)

const schedulePage = `<html><body>
<h4>CPEN 211 Introduction to Microcomputers</h4>
<p>Basic computer architecture, assembly language programming.</p>
<p>Credits: 4</p>
<p>Pre-reqs: One of CPEN 210, EECE 259.</p>
</body></html>`

const emptySchedulePage = `<html><body><h4>No such course</h4></body></html>`

const archivePage = `<html><body><dl>
<dt><a name="221"></a>ELEC 221 (4) Signals and Systems</dt>
<dd>Continuous and discrete time signals. Prerequisite: MATH 256. Corequisite: ELEC 201. This course is not eligible for Credit/D/Fail grading.</dd>
<dt>ELEC 291 (6) Design Studio</dt>
<dd>Project based.</dd>
</dl></body></html>`

func newTestClient(server *httptest.Server, retries int) *Client {
	client := NewClient(server.Client(), retries)
	client.scheduleURL = server.URL + "/schedule"
	client.archiveURL = server.URL + "/archive"
	for i := range client.retryIntervals {
		client.retryIntervals[i] = time.Millisecond
	}
	return client
}

func TestClient_Lookup_Schedule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		assert.Equal(t, "CPEN", r.URL.Query().Get("dept"))
		assert.Equal(t, "211", r.URL.Query().Get("course"))
		w.Write([]byte(schedulePage))
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	info, err := client.Lookup(context.Background(), models.Course{Dept: "CPEN", Code: "211"})

	require.NoError(t, err)
	require.True(t, info.IsPresent())
	got := info.MustGet()
	assert.Equal(t, "CPEN 211 Introduction to Microcomputers", got.Name)
	assert.Equal(t, "Basic computer architecture, assembly language programming.", got.Description)
	assert.Equal(t, "4", got.Credits)
	assert.Equal(t, "One of CPEN 210, EECE 259.", got.Prerequisites)
	assert.Equal(t, "None", got.Corequisites)
	assert.Equal(t, scheduleSource, got.Source)
	assert.Contains(t, got.URL, "tname=subj-course")
}

func TestClient_Lookup_ArchiveFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schedule":
			w.Write([]byte(emptySchedulePage))
		case "/archive":
			assert.Equal(t, "ELEC", r.URL.Query().Get("code"))
			w.Write([]byte(archivePage))
		}
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	info, err := client.Lookup(context.Background(), models.Course{Dept: "ELEC", Code: "221"})

	require.NoError(t, err)
	require.True(t, info.IsPresent())
	got := info.MustGet()
	assert.Equal(t, "ELEC 221 Signals and Systems", got.Name)
	assert.Equal(t, "4", got.Credits)
	assert.Equal(t, "MATH 256.", got.Prerequisites)
	assert.Equal(t, "ELEC 201.", got.Corequisites)
	assert.Equal(t, "Continuous and discrete time signals.", got.Description)
	assert.Equal(t, archiveSource, got.Source)
}

func TestClient_Lookup_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptySchedulePage))
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	info, err := client.Lookup(context.Background(), models.Course{Dept: "CPEN", Code: "999"})

	require.NoError(t, err)
	assert.False(t, info.IsPresent())
}

func TestClient_Lookup_RetriesTransientFailures(t *testing.T) {
	var scheduleCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/schedule" && scheduleCalls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(schedulePage))
	}))
	defer server.Close()

	client := newTestClient(server, 3)
	info, err := client.Lookup(context.Background(), models.Course{Dept: "CPEN", Code: "211"})

	require.NoError(t, err)
	assert.True(t, info.IsPresent())
	assert.Equal(t, int32(3), scheduleCalls.Load())
}

func TestClient_Lookup_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	info, err := client.Lookup(context.Background(), models.Course{Dept: "CPEN", Code: "211"})

	require.Error(t, err)
	assert.False(t, info.IsPresent())
	// 3 attempts on each page
	assert.Equal(t, int32(6), calls.Load())
}

func TestRetrySchedule(t *testing.T) {
	assert.Empty(t, retrySchedule(0))
	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
	}, retrySchedule(3))
}
