package mark

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradebook/internal/app/client"
	"gradebook/internal/app/client/offline"
	"gradebook/internal/domain/mark"
)

func sampleMarks() []client.LocalMark {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return []client.LocalMark{
		{
			ID:        "r1",
			Status:    offline.StatusPending,
			Mark:      mark.Entry{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 72},
			Grade:     "B",
			CreatedAt: at,
			UpdatedAt: at,
		},
		{
			ID:        "r2",
			Status:    offline.StatusSynced,
			Mark:      mark.Entry{AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 48.5},
			Grade:     "D",
			CreatedAt: at,
			UpdatedAt: at,
		},
	}
}

func TestPrintMarksTable(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, printMarksTable(&buf, sampleMarks()))

	out := buf.String()
	assert.Contains(t, out, "asm-1")
	assert.Contains(t, out, "48.5")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "synced")
	assert.Contains(t, out, "Всего оценок: 2")

	buf.Reset()
	require.NoError(t, printMarksTable(&buf, nil))
	assert.Contains(t, buf.String(), "Оценки не найдены")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, sampleMarks()))

	var decoded []client.LocalMark
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, offline.StatusSynced, decoded[1].Status)
	assert.Equal(t, "s2", decoded[1].Mark.StudentID)
}

func TestPrintRemoteTable(t *testing.T) {
	marks := []mark.Mark{
		mark.Mark{AssessmentID: "math", StudentID: "s1", MarksObtained: 84}.WithGrade(),
		mark.Mark{AssessmentID: "eng", StudentID: "s1", MarksObtained: 47}.WithGrade(),
	}

	var buf bytes.Buffer
	require.NoError(t, printRemoteTable(&buf, mark.ListResponse{Marks: marks, Summary: mark.Summarize(marks)}))

	out := buf.String()
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "Fair")
	assert.Contains(t, out, "Итого: 131, средний балл: 65.5, оценка: B (Very Good)")

	buf.Reset()
	require.NoError(t, printRemoteTable(&buf, mark.ListResponse{}))
	assert.Contains(t, buf.String(), "Оценки не найдены")
}
