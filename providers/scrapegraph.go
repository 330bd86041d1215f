package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pricescout/config"
	"pricescout/models"
)

// ScrapeGraph drives an external LLM-based extraction script against
// MercadoLibre. The script prints a JSON document to stdout, usually
// surrounded by log noise and markdown fences.
type ScrapeGraph struct {
	opts config.ScrapeGraphOptions
}

func NewScrapeGraph(opts config.ScrapeGraphOptions) *ScrapeGraph {
	return &ScrapeGraph{opts: opts}
}

func (p *ScrapeGraph) Name() string { return "mercadolibre-scrapegraph" }

func (p *ScrapeGraph) Search(ctx context.Context, query string, take int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" || !p.opts.Enabled {
		return nil, nil
	}
	if _, err := os.Stat(p.opts.ScriptPath); err != nil {
		log.Printf("[%s] extractor script not found at %s, skipping", p.Name(), p.opts.ScriptPath)
		return nil, nil
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Printf("[%s] OPENAI_API_KEY missing, skipping", p.Name())
		return nil, nil
	}
	take = ClampTake(take)

	timeout := p.opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	args := []string{
		p.opts.ScriptPath,
		"--query", query,
		"--take", strconv.Itoa(take),
		"--model", p.opts.Model,
		"--headless", strconv.FormatBool(p.opts.Headless),
		"--timeout", strconv.Itoa(int(timeout.Seconds())),
		"--scroll", "true",
		"--scrolls", "10",
	}

	// Hard cap past the script's own timeout so a hung extractor is never
	// awaited forever, independent of the caller's cancellation.
	runCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.opts.PythonPath, args...)
	cmd.Env = append(os.Environ(),
		"PYTHONIOENCODING=utf-8",
		"PYTHONUTF8=1",
		"LC_ALL=C.UTF-8",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("[%s] running %s %s", p.Name(), p.opts.PythonPath, strings.Join(args, " "))
	err := cmd.Run()
	if s := strings.TrimSpace(stderr.String()); s != "" {
		log.Printf("[%s] stderr: %s", p.Name(), s)
	}
	if err != nil {
		// A crashed extractor degrades to zero results for this provider.
		log.Printf("[%s] extractor failed: %v", p.Name(), err)
		return nil, nil
	}

	payload := sanitizeJSON(stdout.String())
	if payload == "" {
		log.Printf("[%s] no JSON payload in extractor output", p.Name())
		return nil, nil
	}

	var response struct {
		Items []rawItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		log.Printf("[%s] invalid JSON payload: %v", p.Name(), err)
		return nil, nil
	}

	return mapRawItems(response.Items, take, mapMeta{
		Source:          "mercadolibre",
		SourceLabel:     "MercadoLibre (ScrapeGraphAI)",
		ScrapeMethod:    "scrapegraph",
		SelectorVersion: "ml-graph-1",
		DefaultCurrency: "ARS",
		FreeShipWord:    "gratis",
		Query:           query,
	}), nil
}

// sanitizeJSON digs the JSON payload out of noisy extractor output: strips
// a markdown code fence and its language tag, drops stray single quotes,
// then scans backward from the last closing brace for the most recent
// opening brace that yields valid JSON. Objects are tried before arrays.
// Returns "" when no valid candidate exists.
func sanitizeJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		if end := strings.Index(trimmed[3:], "```"); end >= 0 {
			trimmed = strings.TrimSpace(trimmed[3 : 3+end])
			if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "json") {
				trimmed = strings.TrimSpace(trimmed[4:])
			}
		}
	}
	trimmed = strings.TrimSpace(strings.Trim(strings.TrimSpace(trimmed), "'"))

	if obj := extractLastValidJSON(trimmed, '{', '}'); obj != "" {
		return obj
	}
	return extractLastValidJSON(trimmed, '[', ']')
}

func extractLastValidJSON(text string, opener, closer byte) string {
	end := strings.LastIndexByte(text, closer)
	if end < 0 {
		return ""
	}
	for i := end; i >= 0; i-- {
		if text[i] != opener {
			continue
		}
		candidate := text[i : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return ""
}
