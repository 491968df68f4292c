package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_path, title, status, source_fingerprint, detected_language, normalized_file, transcript_file, diarization_file, markdown_file, pdf_file, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourcePath      string
		title           sql.NullString
		statusStr       string
		fingerprint     sql.NullString
		detectedLang    sql.NullString
		normalizedFile  sql.NullString
		transcriptFile  sql.NullString
		diarizationFile sql.NullString
		markdownFile    sql.NullString
		pdfFile         sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&title,
		&statusStr,
		&fingerprint,
		&detectedLang,
		&normalizedFile,
		&transcriptFile,
		&diarizationFile,
		&markdownFile,
		&pdfFile,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:                id,
		SourcePath:        sourcePath,
		Title:             title.String,
		Status:            Status(statusStr),
		SourceFingerprint: fingerprint.String,
		DetectedLanguage:  detectedLang.String,
		NormalizedFile:    normalizedFile.String,
		TranscriptFile:    transcriptFile.String,
		DiarizationFile:   diarizationFile.String,
		MarkdownFile:      markdownFile.String,
		PDFFile:           pdfFile.String,
		ErrorMessage:      errorMessage.String,
		ProgressStage:     progressStage.String,
		ProgressPercent:   progressPercent.Float64,
		ProgressMessage:   progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
