package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
	"github.com/ruliana/technoir-transmission-generator/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var testClock = func() time.Time {
	return time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC)
}

// script wires a MockGenerator that recognizes each stage by its prompt
// preamble and records the order of generation calls.
type script struct {
	mu    sync.Mutex
	calls []string

	// failDossierFor makes the dossier stage fail for leads with this name.
	failDossierFor string
	// breakRoster makes the roster stage emit unparseable output.
	breakRoster bool
	// imageFn overrides the default image behavior.
	imageFn func(req genai.ImageRequest) (string, error)
}

func (s *script) record(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, kind)
}

func (s *script) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func rosterJSON() string {
	var leads []map[string]string
	for i := range models.LeadCount {
		leads = append(leads, map[string]string{
			"id":          fmt.Sprintf("lead-%d", i),
			"name":        fmt.Sprintf("Lead %d", i),
			"description": "One sentence.",
			"category":    string(models.Categories[i%len(models.Categories)]),
		})
	}
	payload, _ := json.Marshal(map[string]any{"leads": leads})
	return string(payload)
}

func (s *script) generator() *genai.MockGenerator {
	return &genai.MockGenerator{
		TextFn: func(req genai.TextRequest) (string, error) {
			switch {
			case strings.Contains(req.Prompt, "Create the frame"):
				s.record("frame")
				return `{"title":"Dead Channel","settingSummary":"A drowned city runs on salvage."}`, nil
			case strings.Contains(req.Prompt, "Write the exposition"):
				s.record("exposition")
				return `{"technology":"t","society":"s","environment":"e"}`, nil
			case strings.Contains(req.Prompt, "Create the lead roster"):
				s.record("roster")
				if s.breakRoster {
					return "the roster drowned on the way over", nil
				}
				return rosterJSON(), nil
			case strings.Contains(req.Prompt, "Write the dossier"):
				s.record("dossier")
				if s.failDossierFor != "" && strings.Contains(req.Prompt, "Lead: "+s.failDossierFor+" (") {
					return "garbage that will not parse", nil
				}
				return `{"sensory":{"sight":"si","sound":"so","smell":"sm","vibe":"v"},"expandedDescription":"long"}`, nil
			}
			return "", fmt.Errorf("unexpected prompt: %s", req.Prompt)
		},
		ImageFn: func(req genai.ImageRequest) (string, error) {
			s.record("image")
			if s.imageFn != nil {
				return s.imageFn(req)
			}
			return "data:image/png;base64,IMG", nil
		},
	}
}

func newOrchestrator(s *script) *pipeline.Orchestrator {
	return pipeline.New(s.generator(), testhelpers.NewLogger(io.Discard),
		pipeline.WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		pipeline.WithClock(testClock))
}

func TestGenerateFull(t *testing.T) {
	s := &script{}
	o := newOrchestrator(s)

	tx, err := o.GenerateFull(context.Background(), "drowned city", pipeline.Events{})
	require.NoError(t, err)

	require.Equal(t, "Dead Channel", tx.Title)
	require.Equal(t, testClock().UnixMilli(), tx.ID)
	require.Equal(t, "data:image/png;base64,IMG", tx.HeaderImage)
	require.Len(t, tx.Leads, models.LeadCount)
	for _, lead := range tx.Leads {
		require.NotNil(t, lead.Dossier, "lead %s should have a dossier", lead.Name)
		require.Equal(t, "data:image/png;base64,IMG", lead.Dossier.Image)
	}

	// Strict declared sequence: frame, exposition, roster, header image,
	// then dossier/image pairs one lead at a time.
	calls := s.recorded()
	require.Equal(t, []string{"frame", "exposition", "roster", "image"}, calls[:4])
	require.Len(t, calls, 4+2*models.LeadCount)
	for i := range models.LeadCount {
		require.Equal(t, "dossier", calls[4+2*i])
		require.Equal(t, "image", calls[5+2*i])
	}
}

// A single failing lead is contained: it stays detail-less, everything else
// is detailed, and the run does not abort.
func TestGenerateFullContainsPerLeadFailure(t *testing.T) {
	s := &script{failDossierFor: "Lead 7"}
	o := newOrchestrator(s)

	tx, err := o.GenerateFull(context.Background(), "drowned city", pipeline.Events{})
	require.NoError(t, err)
	require.Len(t, tx.Leads, models.LeadCount)

	for i, lead := range tx.Leads {
		require.Equal(t, fmt.Sprintf("Lead %d", i), lead.Name)
		require.Equal(t, "One sentence.", lead.Description)
		if lead.Name == "Lead 7" {
			require.Nil(t, lead.Dossier)
		} else {
			require.NotNil(t, lead.Dossier, "lead %s should have a dossier", lead.Name)
		}
	}
}

func TestGenerateFullAbortsOnRosterFailure(t *testing.T) {
	s := &script{breakRoster: true}
	o := newOrchestrator(s)

	_, err := o.GenerateFull(context.Background(), "drowned city", pipeline.Events{})
	require.ErrorIs(t, err, genai.ErrMalformedOutput)

	// The run stopped at the roster: no header image, no dossiers.
	require.Equal(t, []string{"frame", "exposition", "roster"}, s.recorded())
}

func TestGenerateFullProgress(t *testing.T) {
	s := &script{}
	o := newOrchestrator(s)

	var progress []string
	_, err := o.GenerateFull(context.Background(), "drowned city", pipeline.Events{
		Progress: func(message string) { progress = append(progress, message) },
	})
	require.NoError(t, err)

	joined := strings.Join(progress, "\n")
	require.Contains(t, joined, "[1/36]")
	require.Contains(t, joined, "[36/36]")
	require.Contains(t, joined, "Transmission complete")
}

// Interactive mode returns before the header image resolves; the background
// goroutine patches the already-returned transmission and nothing else.
func TestGenerateInteractiveHeaderPatch(t *testing.T) {
	release := make(chan struct{})
	patched := make(chan *models.Transmission, 1)

	s := &script{imageFn: func(genai.ImageRequest) (string, error) {
		<-release
		return "data:image/png;base64,HEADER", nil
	}}
	o := newOrchestrator(s)

	tx, err := o.GenerateInteractive(context.Background(), "drowned city", pipeline.Events{
		OnHeaderImage: func(tx *models.Transmission) { patched <- tx },
	})
	require.NoError(t, err)

	// Core fields are ready, header is still pending.
	require.Empty(t, tx.HeaderImage)
	require.Len(t, tx.Leads, models.LeadCount)
	titleBefore, leadsBefore := tx.Title, len(tx.Leads)

	close(release)
	select {
	case got := <-patched:
		require.Same(t, tx, got)
	case <-time.After(5 * time.Second):
		t.Fatal("header image was never reconciled")
	}

	require.Equal(t, "data:image/png;base64,HEADER", tx.HeaderImage)
	// No other field changed.
	require.Equal(t, titleBefore, tx.Title)
	require.Len(t, tx.Leads, leadsBefore)
}

func TestGenerateInteractiveToleratesMissingHeader(t *testing.T) {
	patched := make(chan *models.Transmission, 1)

	s := &script{imageFn: func(genai.ImageRequest) (string, error) {
		return "", nil
	}}
	o := newOrchestrator(s)

	tx, err := o.GenerateInteractive(context.Background(), "drowned city", pipeline.Events{
		OnHeaderImage: func(tx *models.Transmission) { patched <- tx },
	})
	require.NoError(t, err)

	select {
	case <-patched:
	case <-time.After(5 * time.Second):
		t.Fatal("header reconciliation never fired")
	}
	require.Empty(t, tx.HeaderImage)
	require.Len(t, tx.Leads, models.LeadCount)
}

func TestDetailLead(t *testing.T) {
	s := &script{}
	o := newOrchestrator(s)

	tx, err := o.GenerateInteractive(context.Background(), "drowned city", pipeline.Events{})
	require.NoError(t, err)

	lead := &tx.Leads[3]
	require.Nil(t, lead.Dossier)

	require.NoError(t, o.DetailLead(context.Background(), tx, lead, pipeline.Events{}))
	require.NotNil(t, lead.Dossier)
	require.Equal(t, "long", lead.Dossier.Description)
	require.Equal(t, "data:image/png;base64,IMG", lead.Dossier.Image)

	// Only the targeted lead gained a dossier.
	require.Nil(t, tx.Leads[4].Dossier)
}

func TestDetailLeadKeepsLeadOnFailure(t *testing.T) {
	s := &script{failDossierFor: "Lead 3"}
	o := newOrchestrator(s)

	tx, err := o.GenerateInteractive(context.Background(), "drowned city", pipeline.Events{})
	require.NoError(t, err)

	lead := &tx.Leads[3]
	err = o.DetailLead(context.Background(), tx, lead, pipeline.Events{})
	require.ErrorIs(t, err, genai.ErrMalformedOutput)
	require.Nil(t, lead.Dossier)
	require.Equal(t, "Lead 3", lead.Name)
}

func TestGenerateInteractiveAbortsOnFrameFailure(t *testing.T) {
	gen := &genai.MockGenerator{
		TextFn: func(genai.TextRequest) (string, error) { return "", genai.ErrMissingCredential },
	}
	o := pipeline.New(gen, testhelpers.NewLogger(io.Discard))

	_, err := o.GenerateInteractive(context.Background(), "drowned city", pipeline.Events{})
	require.ErrorIs(t, err, genai.ErrMissingCredential)
}
