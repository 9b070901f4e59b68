package e2e

import (
	"net/http"
	"os"
	"testing"
)

func TestGenerate_ProducesMIDI(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate",
		`{"dna":"ATGGCATTAGCAGCATTTAA","duration":10}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	midiName, _ := body["midiFilename"].(string)
	if midiName == "" {
		t.Fatal("expected a midiFilename in the response")
	}

	path, err := ta.store.Resolve(midiName)
	if err != nil {
		t.Fatalf("generated artifact not in store: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "MThd" {
		t.Error("artifact is not a standard MIDI file")
	}

	if _, ok := body["analysis"]; !ok {
		t.Error("expected analysis alongside the artifact")
	}
}

func TestGenerate_Validation(t *testing.T) {
	ta := setupApp(t)

	cases := []string{
		`{}`,                // missing dna
		`{"dna":"ATGGCA"}`,  // too short
		`{"dna":"ATGGCATTAGCAGCATTTAA","duration":5}`,   // duration below minimum
		`{"dna":"ATGGCATTAGCAGCATTTAA","duration":999}`, // duration above maximum
	}
	for _, body := range cases {
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusBadRequest)
	}
}

func TestAudio_ServeAndDownload(t *testing.T) {
	ta := setupApp(t)

	path, err := ta.store.PathFor("sample.mp3")
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if err := os.WriteFile(path, []byte("fake mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/audio/sample.mp3", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", ct)
	}
	resp.Body.Close()

	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/download-file/sample.mp3", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Error("download should set Content-Disposition")
	}
	resp.Body.Close()
}

func TestAudio_RejectsTraversalAndUnknown(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/audio/..%2F..%2Fetc%2Fpasswd", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/audio/nope.mp3", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)

	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/download-file/script.sh", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestCoverStart_MissingSource(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/cover/start",
		`{"filename":"absent.mp3","prompt":"ethereal synth cover"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusInternalServerError)
}

func TestCoverStart_Validation(t *testing.T) {
	ta := setupApp(t)

	cases := []string{
		`{}`,                   // everything missing
		`{"filename":"x.mp3"}`, // no prompt
		`{"filename":"x.mp3","prompt":"ab"}`, // prompt too short
	}
	for _, body := range cases {
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/cover/start", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusBadRequest)
	}
}
