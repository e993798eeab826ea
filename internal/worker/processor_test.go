package worker

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/internal/lookup"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/poster"
)

var _ = Describe("Responder", func() {
	var (
		ctx      context.Context
		querier  *fakeQuerier
		replier  *fakeReplier
		replies  *fakeReplyStore
		r        *Responder
		now      time.Time
		mention  model.Mention
		openCase model.ServiceRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
		querier = &fakeQuerier{}
		replier = &fakeReplier{}
		replies = &fakeReplyStore{}

		r = NewResponder(querier, replier, replies, ResponderConfig{Window: time.Hour})
		r.now = func() time.Time { return now }

		mention = model.Mention{
			NoteID:       1001,
			ProjectID:    42,
			IssueIID:     7,
			DiscussionID: "disc",
			Author:       "alice",
			Body:         "@phl311bot status of 12345678?",
			CreatedAt:    now.Add(-10 * time.Minute),
		}

		openCase = model.ServiceRequest{ID: 12345678, Status: model.StatusOpen, ServiceName: "Pothole"}
		querier.queryFn = func(context.Context, string) ([]model.ServiceRequest, error) {
			return []model.ServiceRequest{openCase}, nil
		}
	})

	It("replies in the mention's discussion and records it", func() {
		Expect(r.Process(ctx, mention)).To(Succeed())

		Expect(replier.replies).To(HaveLen(1))
		Expect(replier.replies[0].target).To(Equal(poster.Target{ProjectID: 42, IssueIID: 7, DiscussionID: "disc"}))
		Expect(replier.replies[0].text).To(HavePrefix("@alice Hi, here's some info on case # 12345678:\n\n"))
		Expect(replier.replies[0].text).To(ContainSubstring("Status: Open\n"))

		Expect(replies.created).To(HaveLen(1))
		Expect(replies.created[0].NoteID).To(Equal(int64(1001)))
		Expect(replies.created[0].ServiceRequestID).To(Equal(int64(12345678)))
		Expect(replies.created[0].ReplyRef).To(Equal("note-1"))
		Expect(replies.created[0].ID).NotTo(BeZero())
	})

	It("ignores mentions older than the window", func() {
		mention.CreatedAt = now.Add(-2 * time.Hour)
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(querier.calls).To(BeZero())
		Expect(replier.replies).To(BeEmpty())
	})

	It("never answers the same note twice", func() {
		replies.hasRepliedFn = func(context.Context, int64) (bool, error) { return true, nil }
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(replier.replies).To(BeEmpty())
	})

	It("stays silent without a case number", func() {
		mention.Body = "@phl311bot hello"
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(querier.calls).To(BeZero())
		Expect(replier.replies).To(BeEmpty())
		Expect(replies.created).To(BeEmpty())
	})

	It("looks up and records only the first case number", func() {
		var wheres []string
		querier.queryFn = func(_ context.Context, where string) ([]model.ServiceRequest, error) {
			wheres = append(wheres, where)
			return []model.ServiceRequest{openCase}, nil
		}
		mention.Body = "@phl311bot 12345678 or maybe 87654321?"

		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(wheres).To(Equal([]string{"service_request_id = 12345678"}))
		Expect(replies.created).To(HaveLen(1))
		Expect(replies.created[0].ServiceRequestID).To(Equal(int64(12345678)))
	})

	It("stays silent when the case is ambiguous", func() {
		querier.queryFn = func(context.Context, string) ([]model.ServiceRequest, error) {
			return []model.ServiceRequest{openCase, openCase}, nil
		}
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(replier.replies).To(BeEmpty())
	})

	It("drops inconsistent records without retrying", func() {
		querier.queryFn = func(context.Context, string) ([]model.ServiceRequest, error) {
			return []model.ServiceRequest{{ID: 12345678}}, nil
		}
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(replier.replies).To(BeEmpty())
	})

	It("returns query errors so the message is retried", func() {
		querier.queryFn = func(context.Context, string) ([]model.ServiceRequest, error) {
			return nil, errors.New("carto down")
		}
		err := r.Process(ctx, mention)
		Expect(err).To(MatchError(ContainSubstring("carto down")))
		Expect(errors.Is(err, lookup.ErrInconsistentRecord)).To(BeFalse())
	})

	It("returns reply errors so the message is retried", func() {
		replier.replyFn = func(context.Context, poster.Target, string) (string, error) {
			return "", errors.New("gitlab 500")
		}
		Expect(r.Process(ctx, mention)).To(MatchError(ContainSubstring("posting reply: gitlab 500")))
		Expect(replies.created).To(BeEmpty())
	})

	It("does not fail once the reply is public", func() {
		replies.createFn = func(context.Context, *model.Reply) error { return errors.New("db down") }
		Expect(r.Process(ctx, mention)).To(Succeed())
		Expect(replier.replies).To(HaveLen(1))
	})

	It("returns ledger read errors", func() {
		replies.hasRepliedFn = func(context.Context, int64) (bool, error) { return false, errors.New("db down") }
		Expect(r.Process(ctx, mention)).To(MatchError(ContainSubstring("checking reply ledger")))
	})
})
