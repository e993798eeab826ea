package stats_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/stats"
)

func requests(names ...string) []model.ServiceRequest {
	out := make([]model.ServiceRequest, len(names))
	for i, n := range names {
		out[i] = model.ServiceRequest{ID: int64(i + 1), ServiceName: n}
	}
	return out
}

var _ = Describe("Aggregate", func() {
	It("returns an empty, non-nil slice for no records", func() {
		result, err := stats.AggregateBy(nil, stats.KeyServiceName)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).NotTo(BeNil())
		Expect(result).To(BeEmpty())
	})

	It("counts records per label sorted by count descending", func() {
		result, err := stats.AggregateBy(requests("Pothole", "Trash", "Trash", "Graffiti", "Trash", "Pothole"), stats.KeyServiceName)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal([]model.CountRecord{
			{Label: "Trash", Count: 3},
			{Label: "Pothole", Count: 2},
			{Label: "Graffiti", Count: 1},
		}))
	})

	It("breaks ties by first appearance in the input", func() {
		result := stats.Aggregate(requests("Graffiti", "Trash", "Pothole", "Trash", "Graffiti", "Pothole"),
			func(r model.ServiceRequest) string { return r.ServiceName })
		Expect(result).To(Equal([]model.CountRecord{
			{Label: "Graffiti", Count: 2},
			{Label: "Trash", Count: 2},
			{Label: "Pothole", Count: 2},
		}))
	})

	It("skips records with a missing key", func() {
		result, err := stats.AggregateBy(requests("Trash", "", "Trash"), stats.KeyServiceName)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal([]model.CountRecord{{Label: "Trash", Count: 2}}))
	})

	It("groups by agency", func() {
		records := []model.ServiceRequest{
			{ID: 1, AgencyResponsible: "Streets Department"},
			{ID: 2, AgencyResponsible: "Water Department"},
			{ID: 3, AgencyResponsible: "Streets Department"},
		}
		result, err := stats.AggregateBy(records, stats.KeyAgency)
		Expect(err).NotTo(HaveOccurred())
		Expect(result[0]).To(Equal(model.CountRecord{Label: "Streets Department", Count: 2}))
	})

	It("rejects unknown keys", func() {
		_, err := stats.AggregateBy(requests("Trash"), stats.GroupKey("zip"))
		Expect(err).To(MatchError(ContainSubstring("unknown group key")))
	})

	It("is deterministic across calls", func() {
		input := requests("b", "a", "c", "a", "b", "d")
		key := func(r model.ServiceRequest) string { return r.ServiceName }
		Expect(stats.Aggregate(input, key)).To(Equal(stats.Aggregate(input, key)))
	})
})

var _ = Describe("Top", func() {
	items := []model.CountRecord{{Label: "a", Count: 3}, {Label: "b", Count: 2}, {Label: "c", Count: 1}}

	It("limits to n items", func() {
		Expect(stats.Top(items, 2)).To(Equal(items[:2]))
	})

	It("returns everything when n exceeds the length", func() {
		Expect(stats.Top(items, 15)).To(Equal(items))
	})

	It("treats non-positive n as no limit", func() {
		Expect(stats.Top(items, 0)).To(Equal(items))
	})
})
