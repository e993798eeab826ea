package queue

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"phl311.app/bot/internal/model"
)

var _ = Describe("ParseMessage", func() {
	// Values come back from Redis as strings.
	raw := func() map[string]any {
		return map[string]any{
			"note_id":       "1001",
			"project_id":    "42",
			"issue_iid":     "7",
			"discussion_id": "abc123",
			"author":        "alice",
			"body":          "@phl311bot what about 12345678?",
			"created_at":    "1717416000",
			"attempt":       "2",
			"trace_id":      "0af7651916cd43dd8448eb211c80319c",
		}
	}

	It("parses a complete mention", func() {
		msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: raw()})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("0af7651916cd43dd8448eb211c80319c"))
		Expect(msg.Mention).To(Equal(model.Mention{
			NoteID:       1001,
			ProjectID:    42,
			IssueIID:     7,
			DiscussionID: "abc123",
			Author:       "alice",
			Body:         "@phl311bot what about 12345678?",
			CreatedAt:    time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
		}))
	})

	It("defaults the attempt to one", func() {
		values := raw()
		delete(values, "attempt")
		msg, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	DescribeTable("rejects malformed messages",
		func(mutate func(map[string]any), expected string) {
			values := raw()
			mutate(values)
			_, err := ParseMessage(redis.XMessage{ID: "1-0", Values: values})
			Expect(err).To(MatchError(ContainSubstring(expected)))
		},
		Entry("missing note id", func(v map[string]any) { delete(v, "note_id") }, "missing note_id"),
		Entry("bad project id", func(v map[string]any) { v["project_id"] = "x" }, "parsing project_id"),
		Entry("missing body", func(v map[string]any) { delete(v, "body") }, "missing body"),
		Entry("empty author", func(v map[string]any) { v["author"] = "" }, "empty author"),
		Entry("bad attempt", func(v map[string]any) { v["attempt"] = "two" }, "parsing attempt"),
	)

	It("round trips through messageValues", func() {
		original, err := ParseMessage(redis.XMessage{ID: "1-0", Values: raw()})
		Expect(err).NotTo(HaveOccurred())

		values := messageValues(original, 3)
		Expect(values["attempt"]).To(Equal(3))

		stringified := map[string]any{}
		for k, v := range values {
			stringified[k] = fmt.Sprint(v)
		}
		again, err := ParseMessage(redis.XMessage{ID: "2-0", Values: stringified})
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Mention).To(Equal(original.Mention))
		Expect(again.Attempt).To(Equal(3))
	})

	It("omits empty optional fields", func() {
		values := messageValues(Message{Mention: model.Mention{NoteID: 1, Author: "bob"}}, 1)
		Expect(values).NotTo(HaveKey("discussion_id"))
		Expect(values).NotTo(HaveKey("trace_id"))
	})
})
