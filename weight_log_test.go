package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightLog_OverwriteSameDay(t *testing.T) {
	_, router := setupHandlerTest(nil)

	w := doRequest(router, "POST", "/api/weight", `{"weight":181.2}`, "s1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doRequest(router, "POST", "/api/weight", `{"weight":180.4}`, "s1")
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, "POST", "/api/weight", `{"date":"2026-03-01","weight":183}`, "s1")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/weight", "", "s1")
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]any{"date": "2026-03-01", "weight": float64(183)}, entries[0])
	assert.Equal(t, map[string]any{"date": "2026-03-10", "weight": 180.4}, entries[1])
}

func TestWeightLog_KeepsSixty(t *testing.T) {
	h, router := setupHandlerTest(nil)

	for i := 0; i < 61; i++ {
		date := fixedNow().AddDate(0, 0, -60+i).Format("2006-01-02")
		w := doRequest(router, "POST", "/api/weight", fmt.Sprintf(`{"date":%q,"weight":%d}`, date, 150+i), "s1")
		require.Equal(t, http.StatusOK, w.Code)
	}

	entries, err := h.tracker.Weights(t.Context(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 60)
	assert.Equal(t, fixedNow().AddDate(0, 0, -59).Format("2006-01-02"), entries[0].Date)
}

func TestWeightLog_Range(t *testing.T) {
	_, router := setupHandlerTest(nil)

	for _, d := range []string{"2026-03-01", "2026-03-05", "2026-03-09"} {
		w := doRequest(router, "POST", "/api/weight", `{"date":"`+d+`","weight":170}`, "s1")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, "GET", "/api/weight?start=2026-03-02&end=2026-03-09", "", "s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["entries"], 2)

	w = doRequest(router, "GET", "/api/weight?start=2026-03-20&end=2026-03-21", "", "s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeBody(t, w)["entries"])
}

func TestWeightLog_BadInput(t *testing.T) {
	_, router := setupHandlerTest(nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"zero weight", "POST", "/api/weight", `{"weight":0}`},
		{"huge weight", "POST", "/api/weight", `{"weight":100000}`},
		{"bad date", "POST", "/api/weight", `{"date":"yesterday","weight":150}`},
		{"only start", "GET", "/api/weight?start=2026-03-01", ""},
		{"bad end", "GET", "/api/weight?start=2026-03-01&end=March", ""},
		{"start after end", "GET", "/api/weight?start=2026-03-05&end=2026-03-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, tt.body, "s1")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decodeBody(t, w)["ok"])
		})
	}
}
