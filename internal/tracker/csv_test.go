package tracker

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/chat"
	"github.com/pointskeeper/pointskeeper/internal/points"
)

// fakeResolver resolves names from a fixed table.
type fakeResolver struct {
	users map[string]int64
}

func (r *fakeResolver) ResolveUser(ctx context.Context, name string) (int64, string, error) {
	id, ok := r.users[name]
	if !ok {
		return 0, "", fmt.Errorf("user %q: %w", name, chat.ErrUserNotFound)
	}
	return id, name, nil
}

func TestExportAdjustments_SampleRowWhenEmpty(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)

	var buf bytes.Buffer
	adjs, err := trk.ExportAdjustments(context.Background(), 100, &buf, "somebody")
	if err != nil {
		t.Fatalf("ExportAdjustments: %v", err)
	}
	if len(adjs) != 0 {
		t.Errorf("len(adjs) = %d, want 0", len(adjs))
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (header + sample)", len(records))
	}
	sample := records[1]
	if sample[0] != "" {
		t.Errorf("sample user_id = %q, want blank", sample[0])
	}
	if sample[1] != "somebody" {
		t.Errorf("sample user_name = %q, want %q", sample[1], "somebody")
	}
	if !strings.Contains(sample[3], "because reasons") {
		t.Errorf("sample note = %q, want illustrative text", sample[3])
	}
}

func TestAdjustmentsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)
	ctx := context.Background()

	if err := s.UpsertSnowflake(ctx, 555, "alice"); err != nil {
		t.Fatalf("UpsertSnowflake: %v", err)
	}
	want := []points.Adjustment{
		{ChannelID: 100, UserID: 555, Adjustment: 10, Note: "event bonus"},
		{ChannelID: 100, UserID: 600, Adjustment: -3, Note: "penalty"},
	}
	if err := s.ReplaceAdjustments(ctx, 100, want); err != nil {
		t.Fatalf("seed adjustments: %v", err)
	}

	var buf bytes.Buffer
	if _, err := trk.ExportAdjustments(ctx, 100, &buf, "sample"); err != nil {
		t.Fatalf("ExportAdjustments: %v", err)
	}

	if err := trk.ImportAdjustments(ctx, 100, &buf); err != nil {
		t.Fatalf("ImportAdjustments: %v", err)
	}

	got, err := s.Adjustments(ctx, 100)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImportAdjustments_ResolvesBlankUserID(t *testing.T) {
	s := openTestStore(t)
	trk := New(s, WithResolver(&fakeResolver{users: map[string]int64{"alice": 555}}))
	ctx := context.Background()

	input := strings.Join([]string{
		"user_id,user_name,adjustment,note",
		",alice,10,event bonus",
	}, "\n")

	if err := trk.ImportAdjustments(ctx, 100, strings.NewReader(input)); err != nil {
		t.Fatalf("ImportAdjustments: %v", err)
	}

	adjs, err := s.Adjustments(ctx, 100)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjs) != 1 || adjs[0].UserID != 555 {
		t.Fatalf("adjs = %+v, want alice resolved to 555", adjs)
	}

	// Resolution refreshes the snowflake directory.
	sf, ok, err := s.GetSnowflake(ctx, 555)
	if err != nil {
		t.Fatalf("GetSnowflake: %v", err)
	}
	if !ok || sf.Name != "alice" {
		t.Errorf("snowflake = %+v ok=%v, want alice", sf, ok)
	}
}

func TestImportAdjustments_UnresolvableRowAbortsAll(t *testing.T) {
	s := openTestStore(t)
	trk := New(s, WithResolver(&fakeResolver{users: map[string]int64{"alice": 555}}))
	ctx := context.Background()

	old := []points.Adjustment{{ChannelID: 100, UserID: 700, Adjustment: 1, Note: "keep"}}
	if err := s.ReplaceAdjustments(ctx, 100, old); err != nil {
		t.Fatalf("seed: %v", err)
	}

	input := strings.Join([]string{
		"user_id,user_name,adjustment,note",
		",alice,10,fine",
		",nobody,5,bad row",
	}, "\n")

	err := trk.ImportAdjustments(ctx, 100, strings.NewReader(input))
	if !errors.Is(err, chat.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("err = %v, want line number in message", err)
	}

	// The existing set survives a failed import.
	adjs, err := s.Adjustments(ctx, 100)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjs) != 1 || adjs[0].UserID != 700 {
		t.Errorf("adjs = %+v, want old set untouched", adjs)
	}
}

func TestImportAdjustments_NoResolver(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)

	input := strings.Join([]string{
		"user_id,user_name,adjustment,note",
		",alice,10,needs resolution",
	}, "\n")

	err := trk.ImportAdjustments(context.Background(), 100, strings.NewReader(input))
	if !errors.Is(err, ErrNoResolver) {
		t.Errorf("err = %v, want ErrNoResolver", err)
	}
}

func TestImportAdjustments_ReorderedColumns(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)
	ctx := context.Background()

	input := strings.Join([]string{
		"note,adjustment,user_name,user_id",
		"hand edited,7,alice,555",
	}, "\n")

	if err := trk.ImportAdjustments(ctx, 100, strings.NewReader(input)); err != nil {
		t.Fatalf("ImportAdjustments: %v", err)
	}

	adjs, err := s.Adjustments(ctx, 100)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjs) != 1 {
		t.Fatalf("len(adjs) = %d, want 1", len(adjs))
	}
	if adjs[0].UserID != 555 || adjs[0].Adjustment != 7 || adjs[0].Note != "hand edited" {
		t.Errorf("adjs[0] = %+v, want user 555 adjustment 7", adjs[0])
	}
}

func TestImportAdjustments_BadHeader(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)

	input := "who,how_much\nalice,10\n"
	err := trk.ImportAdjustments(context.Background(), 100, strings.NewReader(input))
	if err == nil {
		t.Error("missing columns should fail the import")
	}
}

func TestExportPoints_CSV(t *testing.T) {
	s := openTestStore(t)
	trk := New(s)
	ctx := context.Background()

	if err := trk.ConfigureChannel(ctx, 1, 100, 3, "general"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	msg := chat.Message{
		ID:          1,
		AuthorID:    555,
		AuthorName:  "alice",
		ChannelID:   100,
		ChannelName: "general",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if _, err := trk.RecordPoint(ctx, 1, msg); err != nil {
		t.Fatalf("record: %v", err)
	}

	var buf bytes.Buffer
	if err := trk.ExportPoints(ctx, 1, &buf); err != nil {
		t.Fatalf("ExportPoints: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (header + row)", len(records))
	}
	if len(records[0]) != 9 {
		t.Errorf("header has %d columns, want 9", len(records[0]))
	}
	row := records[1]
	if row[0] != "1" || row[4] != "general" || row[6] != "alice" || row[7] != "3" {
		t.Errorf("row = %v, want message 1 in general by alice at 3 points", row)
	}
	if row[8] != "2025-06-01T12:00:00.000000000Z" {
		t.Errorf("sent_at = %q, want fixed-width UTC format", row[8])
	}
}
