package stats_test

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/stats"
)

var itemLine = regexp.MustCompile(`(?m)^(\d+)\. (.+) (\d+)$`)

// parseLines recovers the numbered items from a thread.
func parseLines(chunks []string) ([]int, []model.CountRecord) {
	var indices []int
	var items []model.CountRecord
	for _, chunk := range chunks {
		for _, m := range itemLine.FindAllStringSubmatch(chunk, -1) {
			idx, _ := strconv.Atoi(m[1])
			count, _ := strconv.Atoi(m[3])
			indices = append(indices, idx)
			items = append(items, model.CountRecord{Label: m[2], Count: count})
		}
	}
	return indices, items
}

func generatedItems(n int) []model.CountRecord {
	items := make([]model.CountRecord, n)
	for i := range items {
		items[i] = model.CountRecord{Label: fmt.Sprintf("Service Type %c", 'A'+i%26), Count: n - i}
	}
	return items
}

var _ = Describe("Paginate", func() {
	example := []model.CountRecord{
		{Label: "Trash", Count: 5},
		{Label: "Pothole", Count: 3},
		{Label: "Graffiti", Count: 1},
	}

	It("returns the header alone for no items", func() {
		Expect(stats.Paginate("Cases:", nil, 40, 5)).To(Equal([]string{"Cases:\n\n (1/1)"}))
	})

	It("splits the worked example into two numbered chunks", func() {
		chunks := stats.Paginate("Cases:", example, 40, 5)
		Expect(chunks).To(Equal([]string{
			"Cases:\n\n1. Trash 5\n2. Pothole 3\n (1/2)",
			"3. Graffiti 1\n (2/2)",
		}))
	})

	It("keeps numbering across chunk boundaries", func() {
		chunks := stats.Paginate("Cases:", example, 30, 5)
		Expect(chunks).To(HaveLen(3))
		Expect(chunks[0]).To(Equal("Cases:\n\n1. Trash 5\n (1/3)"))
		Expect(chunks[1]).To(Equal("2. Pothole 3\n (2/3)"))
		Expect(chunks[2]).To(Equal("3. Graffiti 1\n (3/3)"))
	})

	It("requires the chunk to stay strictly under the budget", func() {
		// "Cases:\n\n1. Trash 5\n" is 19 characters; a budget of 19 rejects it.
		chunks := stats.Paginate("Cases:", example[:1], 24, 5)
		Expect(chunks).To(Equal([]string{"Cases:\n\n (1/2)", "1. Trash 5\n (2/2)"}))
	})

	It("measures length in characters, not bytes", func() {
		items := []model.CountRecord{{Label: "Café", Count: 1}, {Label: "Niño", Count: 2}}
		// 26 characters but 29 bytes against a budget of 28.
		chunks := stats.Paginate("Año:", items, 33, 5)
		Expect(chunks).To(HaveLen(1))
	})

	It("is deterministic", func() {
		items := generatedItems(40)
		Expect(stats.Paginate("Header", items, 230, 5)).To(Equal(stats.Paginate("Header", items, 230, 5)))
	})

	DescribeTable("preserves every item once and respects the length bound",
		func(header string, n, maxLength, margin int) {
			items := generatedItems(n)
			chunks := stats.Paginate(header, items, maxLength, margin)

			Expect(chunks).NotTo(BeEmpty())
			for i, chunk := range chunks {
				Expect(utf8.RuneCountInString(chunk)).To(BeNumerically("<=", maxLength))
				Expect(chunk).To(HaveSuffix(fmt.Sprintf(" (%d/%d)", i+1, len(chunks))))
			}
			Expect(chunks[0]).To(HavePrefix(header + "\n\n"))

			indices, recovered := parseLines(chunks)
			Expect(recovered).To(Equal(items))
			for i, idx := range indices {
				Expect(idx).To(Equal(i + 1))
			}
		},
		Entry("single chunk", "Yesterday's closed cases by type:", 3, 230, 5),
		Entry("many chunks", "Yesterday's still open cases by type:", 60, 230, 5),
		Entry("tight bound", "Top:", 9, 60, 8),
		Entry("double digit totals", "Top:", 80, 100, 10),
	)

	It("widens the margin once the page count needs two digits", func() {
		items := generatedItems(150)
		chunks := stats.DefaultPaginator.Paginate("Yesterday's still open cases by type:", items)

		Expect(len(chunks)).To(BeNumerically(">=", 10))
		for _, chunk := range chunks {
			Expect(utf8.RuneCountInString(chunk)).To(BeNumerically("<=", stats.DefaultMaxLength))
		}
		_, recovered := parseLines(chunks)
		Expect(recovered).To(Equal(items))
	})

	It("packs a two-digit thread as if the margin held the suffix", func() {
		items := generatedItems(150)
		// " (10/17)" is 8 runes; the strict budget check leaves one spare.
		Expect(stats.Paginate("Header", items, 230, 5)).To(Equal(stats.Paginate("Header", items, 230, 7)))
	})

	It("exposes the configured limits through Paginator", func() {
		p := stats.Paginator{MaxLength: 40, SuffixMargin: 5}
		Expect(p.Paginate("Cases:", example)).To(Equal(stats.Paginate("Cases:", example, 40, 5)))
		Expect(stats.DefaultPaginator.MaxLength).To(Equal(230))
		Expect(strings.HasSuffix(stats.DefaultPaginator.Paginate("x", nil)[0], "(1/1)")).To(BeTrue())
	})
})
