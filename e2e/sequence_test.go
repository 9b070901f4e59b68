package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestAnalyze_ValidSequence(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/analyze",
		`{"dna":"atg gca tta GCA GCA ttt aa"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["sequence"] != "ATGGCATTAGCAGCATTTAA" {
		t.Errorf("cleaning should strip spaces and uppercase, got %v", body["sequence"])
	}

	analysis, ok := body["analysis"].(map[string]interface{})
	if !ok {
		t.Fatal("expected analysis object")
	}
	for _, field := range []string{"gc", "mode", "tempo", "key", "length"} {
		if _, ok := analysis[field]; !ok {
			t.Errorf("analysis missing field %q", field)
		}
	}
}

func TestAnalyze_TooShort(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/analyze",
		`{"dna":"ATGGCATTAGCAGCATTT"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)

	body := readBody(t, resp)
	// The rejection must name the actual post-cleaning length
	if !strings.Contains(body, "18") {
		t.Errorf("error should state the actual length, got: %s", body)
	}
}

func TestAnalyze_MissingBody(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/analyze", `{}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestRandomSequence_Realistic(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/sequence/random",
		`{"length":60}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	seq, _ := body["sequence"].(string)
	if len(seq) != 60 {
		t.Errorf("expected 60 bases, got %d", len(seq))
	}
	if seq[:3] != "ATG" {
		t.Errorf("realistic sequence must open with a start codon, got %q", seq[:3])
	}
	if body["mode"] != "realistic" {
		t.Errorf("default mode should be realistic, got %v", body["mode"])
	}
	if _, ok := body["analysis"]; !ok {
		t.Error("expected analysis of the generated sequence")
	}
}

func TestRandomSequence_Uniform(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/sequence/random",
		`{"length":50,"mode":"uniform"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	seq, _ := body["sequence"].(string)
	if len(seq) != 50 {
		t.Errorf("expected 50 bases, got %d", len(seq))
	}
	if body["mode"] != "uniform" {
		t.Errorf("expected uniform mode, got %v", body["mode"])
	}
}

func TestRandomSequence_BadLength(t *testing.T) {
	ta := setupApp(t)

	for _, body := range []string{`{"length":0}`, `{"length":5}`, `{"length":200000}`, `{}`} {
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/sequence/random", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusBadRequest)
	}
}
