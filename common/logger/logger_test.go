package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/common/logger"
)

var _ = Describe("LogFields", func() {
	It("returns empty fields for a bare context", func() {
		Expect(logger.GetLogFields(context.Background())).To(Equal(logger.LogFields{}))
	})

	It("merges newer non-empty values over existing ones", func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			RunID:     logger.Ptr(int64(1)),
			Component: "bot.summary",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			SummaryKind: logger.Ptr("delayed"),
		})

		fields := logger.GetLogFields(ctx)
		Expect(*fields.RunID).To(Equal(int64(1)))
		Expect(*fields.SummaryKind).To(Equal("delayed"))
		Expect(fields.Component).To(Equal("bot.summary"))
	})

	It("keeps cancellation of the parent context", func() {
		parent, cancel := context.WithCancel(context.Background())
		ctx := logger.WithLogFields(parent, logger.LogFields{Component: "x"})
		cancel()
		Expect(ctx.Err()).To(MatchError(context.Canceled))
	})
})

var _ = Describe("TraceHandler", func() {
	It("adds context fields to every record", func() {
		buf := &bytes.Buffer{}
		log := slog.New(logger.NewTraceHandler(slog.NewJSONHandler(buf, nil)))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			ServiceRequestID: logger.Ptr(int64(1234567)),
			NoteID:           logger.Ptr(int64(42)),
			Component:        "bot.worker",
		})
		log.InfoContext(ctx, "lookup done")

		var entry map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry["service_request_id"]).To(BeNumerically("==", 1234567))
		Expect(entry["note_id"]).To(BeNumerically("==", 42))
		Expect(entry["component"]).To(Equal("bot.worker"))
		Expect(entry).NotTo(HaveKey("trace_id"))
	})
})

var _ = Describe("Truncate", func() {
	It("leaves short strings alone", func() {
		Expect(logger.Truncate("short", 10)).To(Equal("short"))
	})

	It("cuts on rune boundaries", func() {
		Expect(logger.Truncate("héllo wörld", 5)).To(Equal("héllo..."))
	})
})
