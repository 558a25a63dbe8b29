package httpapi

import (
	"archive/zip"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// exportExcluded names directory components skipped by the project export.
var exportExcluded = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"tmp":          true,
}

// handleExportZip handles GET /project/export.zip: a zip of the working
// directory streamed straight to the response, nothing stored server-side.
func (s *Server) handleExportZip(w http.ResponseWriter, r *http.Request) {
	root, err := os.Getwd()
	if err != nil {
		fail(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="sixtyfix-export.zip"`)

	zw := zip.NewWriter(w)
	defer zw.Close()

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if exportExcluded[part] {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, f)
		return err
	})
}

type bulletsRequest struct {
	Section string `json:"section"`
	Context string `json:"context"`
}

type bulletsResponse struct {
	Bullets []string `json:"bullets"`
}

const bulletsPromptHeader = "You are a professional resume writer.\n" +
	"Generate 3-4 strong, ATS-optimized bullet points.\n"

const bulletsPromptRules = "Rules:\n" +
	"- Start each bullet with a strong action verb\n" +
	"- Include metrics where possible\n" +
	"- Keep each bullet under 120 characters\n" +
	"Return ONLY bullets, one per line, starting with •"

// handleAIBullets handles POST /ai/bullets. Unlike item plans there is no
// local fallback here: without a configured backend the endpoint reports 503.
func (s *Server) handleAIBullets(w http.ResponseWriter, r *http.Request) {
	if !s.generator.Enabled() {
		fail(w, http.StatusServiceUnavailable, "AI unavailable. Set OPENAI_API_KEY.")
		return
	}

	var req bulletsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	section := strings.TrimSpace(req.Section)
	context := strings.TrimSpace(req.Context)
	if section == "" || context == "" {
		fail(w, http.StatusBadRequest, "section and context are required")
		return
	}

	prompt := bulletsPromptHeader +
		"Section: " + section + "\n" +
		"Context: " + context + "\n" +
		bulletsPromptRules

	text, err := s.generator.Complete(r.Context(), prompt)
	if err != nil {
		s.logger.Error(r.Context(), "bullets generation failed", "error", err.Error())
		fail(w, http.StatusBadGateway, "Generation failed")
		return
	}

	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "•") {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) == 0 {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				bullets = append(bullets, line)
			}
		}
	}

	ok(w, http.StatusOK, "", bulletsResponse{Bullets: bullets})
}

// handleFallbackClear handles POST /fallback/clear: discards the recorded
// degradation notice shown on the items listing.
func (s *Server) handleFallbackClear(w http.ResponseWriter, r *http.Request) {
	s.generator.ClearFallbackReason()
	ok(w, http.StatusOK, "Fallback notice cleared", nil)
}
