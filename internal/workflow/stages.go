package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/queue"
	"scribe/internal/render"
	"scribe/internal/scanner"
	"scribe/internal/services/diarize"
	"scribe/internal/services/translate"
	"scribe/internal/services/whisperx"
	"scribe/internal/stage"
	"scribe/internal/transcript"
)

// DefaultStages builds the standard pipeline bindings for the given config.
func DefaultStages(cfg *config.Config, logger *slog.Logger) []StageBinding {
	whisperSvc := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Diarization.HFToken,
	})
	diarizeSvc := diarize.NewService(diarize.Config{
		HFToken:     cfg.Diarization.HFToken,
		MinSpeakers: cfg.Diarization.MinSpeakers,
		MaxSpeakers: cfg.Diarization.MaxSpeakers,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
	})
	translator := translate.NewClient(translate.Config{
		SourceLanguage: cfg.Translation.SourceLanguage,
		TargetLanguage: cfg.Translation.TargetLanguage,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
	})

	return []StageBinding{
		{
			Name:             "normalize",
			FromStatus:       queue.StatusPending,
			ProcessingStatus: queue.StatusNormalizing,
			DoneStatus:       queue.StatusNormalized,
			Handler:          &NormalizeHandler{cfg: cfg},
		},
		{
			Name:             "transcribe",
			FromStatus:       queue.StatusNormalized,
			ProcessingStatus: queue.StatusTranscribing,
			DoneStatus:       queue.StatusTranscribed,
			Handler:          &TranscribeHandler{cfg: cfg, service: whisperSvc, logger: logger},
		},
		{
			Name:             "diarize",
			FromStatus:       queue.StatusTranscribed,
			ProcessingStatus: queue.StatusDiarizing,
			DoneStatus:       queue.StatusDiarized,
			Handler:          &DiarizeHandler{cfg: cfg, service: diarizeSvc},
		},
		{
			Name:             "render",
			FromStatus:       queue.StatusDiarized,
			ProcessingStatus: queue.StatusRendering,
			DoneStatus:       queue.StatusCompleted,
			Handler:          &RenderHandler{cfg: cfg, translator: translator, logger: logger},
		},
	}
}

// NormalizeHandler converts the source recording into a mono 16kHz WAV.
type NormalizeHandler struct {
	cfg *config.Config
}

func (h *NormalizeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if _, err := os.Stat(item.SourcePath); err != nil {
		return fmt.Errorf("source recording unavailable: %w", err)
	}
	if !scanner.IsSupportedAudio(item.SourcePath) {
		return fmt.Errorf("unsupported format: %s", filepath.Ext(item.SourcePath))
	}
	return nil
}

func (h *NormalizeHandler) Execute(ctx context.Context, item *queue.Item) error {
	dest := media.NormalizedPath(item.SourcePath, h.cfg.Paths.WorkDir)
	if err := media.Normalize(ctx, "ffmpeg", item.SourcePath, dest); err != nil {
		return err
	}
	item.NormalizedFile = dest
	item.ProgressMessage = "audio normalized"
	return nil
}

func (h *NormalizeHandler) HealthCheck(ctx context.Context) stage.Health {
	return binaryHealth("normalize", "ffmpeg")
}

// TranscribeHandler runs WhisperX over the normalized audio. When the
// pyannote VAD rejects the HF token it falls back to silero, which needs no
// token, instead of failing the item.
type TranscribeHandler struct {
	cfg     *config.Config
	service *whisperx.Service
	logger  *slog.Logger
}

func (h *TranscribeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.NormalizedFile == "" {
		return fmt.Errorf("no normalized audio for item %d", item.ID)
	}
	if _, err := os.Stat(item.NormalizedFile); err != nil {
		return fmt.Errorf("normalized audio unavailable: %w", err)
	}
	return nil
}

func (h *TranscribeHandler) Execute(ctx context.Context, item *queue.Item) error {
	result, err := h.service.TranscribeFile(ctx, item.NormalizedFile, h.cfg.Paths.WorkDir, item.DetectedLanguage)
	if err != nil && h.cfg.Transcription.VADMethod == whisperx.VADMethodPyannote && tokenRejected(err) {
		logger := h.logger
		if logger == nil {
			logger = logging.NewNop()
		}
		logger.Warn("pyannote VAD rejected the HF token, retrying with silero",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
		h.service.SetVADMethod(whisperx.VADMethodSilero)
		result, err = h.service.TranscribeFile(ctx, item.NormalizedFile, h.cfg.Paths.WorkDir, item.DetectedLanguage)
	}
	if err != nil {
		return err
	}

	segments, payloadLanguage, err := whisperx.LoadSegments(result.JSONPath)
	if err != nil {
		return fmt.Errorf("load transcription output: %w", err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("transcription produced no segments for %s", item.SourcePath)
	}

	allowed := h.cfg.Transcription.AllowedLanguages
	language := payloadLanguage
	if !languageIn(language, allowed) {
		language = transcript.InferLanguage(result.Text, allowed)
	}

	item.TranscriptFile = result.JSONPath
	item.DetectedLanguage = language
	item.ProgressMessage = fmt.Sprintf("%d segments transcribed", len(segments))
	return nil
}

func (h *TranscribeHandler) HealthCheck(ctx context.Context) stage.Health {
	return binaryHealth("transcribe", whisperx.UVXCommand)
}

// DiarizeHandler labels speaker turns in the normalized audio.
type DiarizeHandler struct {
	cfg     *config.Config
	service *diarize.Service
}

func (h *DiarizeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if !h.cfg.Diarization.Enabled {
		return nil
	}
	if item.NormalizedFile == "" {
		return fmt.Errorf("no normalized audio for item %d", item.ID)
	}
	return nil
}

func (h *DiarizeHandler) Execute(ctx context.Context, item *queue.Item) error {
	if !h.cfg.Diarization.Enabled {
		item.ProgressMessage = "diarization disabled"
		return nil
	}

	turns, err := h.service.Diarize(ctx, item.NormalizedFile)
	if err != nil {
		return err
	}

	path := strings.TrimSuffix(item.NormalizedFile, filepath.Ext(item.NormalizedFile)) + ".turns.json"
	if err := diarize.SaveTurns(path, turns); err != nil {
		return err
	}
	item.DiarizationFile = path
	item.ProgressMessage = fmt.Sprintf("%d speaker turns", len(turns))
	return nil
}

func (h *DiarizeHandler) HealthCheck(ctx context.Context) stage.Health {
	if !h.cfg.Diarization.Enabled {
		return stage.Healthy("diarize")
	}
	if !diarize.Available() {
		return stage.Unhealthy("diarize", fmt.Sprintf("%s not found", diarize.DiarizerBinary))
	}
	return stage.Healthy("diarize")
}

// RenderHandler merges transcription with speaker turns, translates foreign
// segments, and writes the Markdown and PDF artifacts.
type RenderHandler struct {
	cfg        *config.Config
	translator *translate.Client
	logger     *slog.Logger
}

func (h *RenderHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.TranscriptFile == "" {
		return fmt.Errorf("no transcript for item %d", item.ID)
	}
	return nil
}

func (h *RenderHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := h.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	raw, payloadLanguage, err := whisperx.LoadSegments(item.TranscriptFile)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	segments := whisperx.ToTranscriptSegments(raw, payloadLanguage, h.cfg.Transcription.AllowedLanguages)

	var turns []transcript.SpeakerTurn
	if item.DiarizationFile != "" {
		turns, err = diarize.LoadTurns(item.DiarizationFile)
		if err != nil {
			return fmt.Errorf("load speaker turns: %w", err)
		}
	}

	labeled := transcript.AssignSpeakers(segments, turns)
	labeled = transcript.CoalesceBySpeaker(labeled)

	// Trailing silence is part of the recording; take the duration from the
	// container rather than the last spoken segment.
	var duration float64
	if item.NormalizedFile != "" {
		probe, probeErr := media.Probe(ctx, "ffprobe", item.NormalizedFile)
		if probeErr != nil {
			logger.Warn("could not probe recording duration",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Error(probeErr),
			)
		} else {
			duration = probe.DurationSeconds()
		}
	}

	if h.cfg.Translation.Enabled {
		for i := range labeled {
			if !translate.NeedsTranslation(labeled[i].Text) {
				continue
			}
			translation, err := h.translator.Translate(ctx, labeled[i].Text)
			if err != nil {
				// A down translation endpoint should not block the transcript.
				logger.Warn("translation failed",
					logging.Int64(logging.FieldItemID, item.ID),
					logging.Error(err),
				)
				continue
			}
			labeled[i].Translation = translation
		}
	}

	outputDir := h.cfg.OutputDirFor(item.SourcePath)
	mdPath := scanner.TranscriptPath(item.SourcePath, outputDir)
	doc := render.Document{
		Title:       item.Title,
		SourceFile:  item.SourcePath,
		Language:    item.DetectedLanguage,
		Duration:    duration,
		GeneratedAt: time.Now(),
		Segments:    labeled,
	}
	if err := render.WriteMarkdown(doc, mdPath); err != nil {
		return err
	}
	item.MarkdownFile = mdPath

	if h.cfg.Report.PDFEnabled {
		pdfPath := strings.TrimSuffix(mdPath, ".md") + ".pdf"
		opts := render.PDFOptions{FontFamily: h.cfg.Report.FontFamily, FontSize: h.cfg.Report.FontSize}
		if err := render.GeneratePDF(ctx, "pandoc", mdPath, pdfPath, opts); err != nil {
			// The Markdown transcript is the primary artifact; a missing
			// TeX toolchain only costs the PDF.
			logger.Warn("pdf generation failed",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Error(err),
			)
		} else {
			item.PDFFile = pdfPath
		}
	}

	item.ProgressMessage = "transcript rendered"
	return nil
}

func (h *RenderHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.cfg.Report.PDFEnabled {
		return binaryHealth("render", "pandoc")
	}
	return stage.Healthy("render")
}

func binaryHealth(name, binary string) stage.Health {
	results := deps.CheckBinaries([]deps.Requirement{{Name: binary, Command: binary}})
	if len(results) > 0 && !results[0].Available {
		return stage.Unhealthy(name, results[0].Detail)
	}
	return stage.Healthy(name)
}

// tokenRejected reports whether a WhisperX failure looks like an HF token
// rejection rather than a transcription problem.
func tokenRejected(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid user token")
}

func languageIn(lang string, allowed []string) bool {
	if lang == "" {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, lang) {
			return true
		}
	}
	return false
}
