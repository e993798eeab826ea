package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/store"
)

var _ = Describe("ReplyStore", func() {
	var (
		ctx     context.Context
		q       *fakeQuerier
		replies store.ReplyStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &fakeQuerier{}
		replies = store.NewStores(q).Replies()
	})

	Describe("HasReplied", func() {
		It("reports the EXISTS result", func() {
			var gotArgs []any
			q.queryRowFn = func(_ context.Context, _ string, args ...any) pgx.Row {
				gotArgs = args
				return fakeRow{scanFn: func(dest ...any) error {
					*dest[0].(*bool) = true
					return nil
				}}
			}

			replied, err := replies.HasReplied(ctx, 1001)
			Expect(err).NotTo(HaveOccurred())
			Expect(replied).To(BeTrue())
			Expect(gotArgs).To(Equal([]any{int64(1001)}))
		})

		It("wraps database errors", func() {
			q.queryRowFn = func(context.Context, string, ...any) pgx.Row {
				return fakeRow{err: errors.New("conn reset")}
			}
			_, err := replies.HasReplied(ctx, 1001)
			Expect(err).To(MatchError(ContainSubstring("checking reply for note 1001: conn reset")))
		})
	})

	Describe("Create", func() {
		It("inserts idempotently on note id", func() {
			at := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
			err := replies.Create(ctx, &model.Reply{
				ID: 1, NoteID: 1001, ProjectID: 42, IssueIID: 7, DiscussionID: "disc",
				Author: "alice", ServiceRequestID: 12345678, ReplyRef: "555", CreatedAt: at,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(q.execs).To(HaveLen(1))
			Expect(q.execs[0].sql).To(ContainSubstring("ON CONFLICT (note_id) DO NOTHING"))
			Expect(q.execs[0].args).To(Equal([]any{
				int64(1), int64(1001), int64(42), int64(7), "disc", "alice", int64(12345678), "555", at,
			}))
		})
	})

	Describe("GetByNote", func() {
		It("maps missing rows to ErrNotFound", func() {
			_, err := replies.GetByNote(ctx, 1)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("scans every column", func() {
			q.queryRowFn = func(context.Context, string, ...any) pgx.Row {
				return fakeRow{scanFn: func(dest ...any) error {
					Expect(dest).To(HaveLen(9))
					*dest[0].(*int64) = 9
					*dest[1].(*int64) = 1001
					*dest[5].(*string) = "alice"
					return nil
				}}
			}
			r, err := replies.GetByNote(ctx, 1001)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.ID).To(Equal(int64(9)))
			Expect(r.Author).To(Equal("alice"))
		})
	})
})
