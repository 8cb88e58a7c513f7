package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"churn-dashboard/dataset"
)

// Counts is a frequency table. Labels are ordered by descending count; ties
// keep the order in which the value first appeared in the dataset.
type Counts struct {
	Field  dataset.Field `json:"field"`
	Labels []string      `json:"labels"`
	Counts []int         `json:"counts"`
}

func (c Counts) Total() int {
	total := 0
	for _, n := range c.Counts {
		total += n
	}
	return total
}

// Percentages formats each share the way the pie chart labels it.
func (c Counts) Percentages() []string {
	total := c.Total()
	out := make([]string, len(c.Counts))
	for i, n := range c.Counts {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		out[i] = fmt.Sprintf("%1.0f%%", pct)
	}
	return out
}

func valueCounts(ds *dataset.Dataset, f dataset.Field) Counts {
	seen := make(map[string]int)
	var labels []string
	var counts []int
	for _, rec := range ds.Records {
		v := rec.Text(f)
		if v == "" {
			continue
		}
		i, ok := seen[v]
		if !ok {
			i = len(labels)
			seen[v] = i
			labels = append(labels, v)
			counts = append(counts, 0)
		}
		counts[i]++
	}

	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	out := Counts{Field: f, Labels: make([]string, len(order)), Counts: make([]int, len(order))}
	for i, j := range order {
		out.Labels[i] = labels[j]
		out.Counts[i] = counts[j]
	}
	return out
}

const (
	nonSeniorLabel = "Non-Senior Citizen"
	seniorLabel    = "Senior Citizen"
)

// seniorSplit counts the 0 and 1 values of Senior_Citizen. Any other value
// belongs to neither slice.
func seniorSplit(ds *dataset.Dataset) Counts {
	out := Counts{
		Field:  dataset.SeniorCitizen,
		Labels: []string{nonSeniorLabel, seniorLabel},
		Counts: []int{0, 0},
	}
	for _, rec := range ds.Records {
		v, err := strconv.ParseFloat(rec.SeniorCitizen, 64)
		if err != nil {
			continue
		}
		switch v {
		case 0:
			out.Counts[0]++
		case 1:
			out.Counts[1]++
		}
	}
	return out
}

// ChurnShares is the unstacked result of grouping by payment method and
// normalising the churn value counts inside each group.
type ChurnShares struct {
	Groups  []string    `json:"groups"`
	Classes []string    `json:"classes"`
	Shares  [][]float64 `json:"shares"`
}

func churnByPaymentMethod(ds *dataset.Dataset) ChurnShares {
	perGroup := make(map[string]map[string]int)
	totals := make(map[string]int)
	classSet := make(map[string]struct{})
	for _, rec := range ds.Records {
		if rec.PaymentMethod == "" || rec.Churn == "" {
			continue
		}
		m, ok := perGroup[rec.PaymentMethod]
		if !ok {
			m = make(map[string]int)
			perGroup[rec.PaymentMethod] = m
		}
		m[rec.Churn]++
		totals[rec.PaymentMethod]++
		classSet[rec.Churn] = struct{}{}
	}

	out := ChurnShares{
		Groups:  sortedKeys(perGroup),
		Classes: sortedKeys(classSet),
	}
	out.Shares = make([][]float64, len(out.Groups))
	for i, g := range out.Groups {
		row := make([]float64, len(out.Classes))
		for j, c := range out.Classes {
			row[j] = float64(perGroup[g][c]) / float64(totals[g])
		}
		out.Shares[i] = row
	}
	return out
}

// PartnerChurnMean is one (Partner, Churn) group of the multivariate step.
// A mean is zero and its Valid flag false when every value in the group is
// missing.
type PartnerChurnMean struct {
	Partner            string  `json:"partner"`
	Churn              string  `json:"churn"`
	MeanTenure         float64 `json:"meanTenure"`
	TenureValid        bool    `json:"tenureValid"`
	MeanMonthlyCharges float64 `json:"meanMonthlyCharges"`
	MonthlyValid       bool    `json:"monthlyValid"`
}

type PartnerChurnMeans struct {
	Rows []PartnerChurnMean `json:"rows"`
}

// Partners and ChurnClasses list the distinct keys in group order.
func (p PartnerChurnMeans) Partners() []string {
	return distinct(p.Rows, func(r PartnerChurnMean) string { return r.Partner })
}

func (p PartnerChurnMeans) ChurnClasses() []string {
	classes := distinct(p.Rows, func(r PartnerChurnMean) string { return r.Churn })
	sort.Strings(classes)
	return classes
}

// Lookup finds the group for a key pair; ok is false when the pair never
// occurs together.
func (p PartnerChurnMeans) Lookup(partner, churn string) (PartnerChurnMean, bool) {
	for _, r := range p.Rows {
		if r.Partner == partner && r.Churn == churn {
			return r, true
		}
	}
	return PartnerChurnMean{}, false
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(n dataset.Number) {
	if n.Valid {
		m.sum += n.Value
		m.n++
	}
}

// mean is zero for an empty accumulator; callers that must tell the two
// apart check n.
func (m meanAcc) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func partnerChurnMeans(ds *dataset.Dataset) PartnerChurnMeans {
	type key struct{ partner, churn string }
	tenure := make(map[key]*meanAcc)
	monthly := make(map[key]*meanAcc)
	var keys []key
	for _, rec := range ds.Records {
		if rec.Partner == "" || rec.Churn == "" {
			continue
		}
		k := key{rec.Partner, rec.Churn}
		if _, ok := tenure[k]; !ok {
			tenure[k] = &meanAcc{}
			monthly[k] = &meanAcc{}
			keys = append(keys, k)
		}
		tenure[k].add(rec.TenureMonths)
		monthly[k].add(rec.MonthlyCharges)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].partner != keys[j].partner {
			return keys[i].partner < keys[j].partner
		}
		return keys[i].churn < keys[j].churn
	})

	out := PartnerChurnMeans{Rows: make([]PartnerChurnMean, 0, len(keys))}
	for _, k := range keys {
		out.Rows = append(out.Rows, PartnerChurnMean{
			Partner:            k.partner,
			Churn:              k.churn,
			MeanTenure:         tenure[k].mean(),
			TenureValid:        tenure[k].n > 0,
			MeanMonthlyCharges: monthly[k].mean(),
			MonthlyValid:       monthly[k].n > 0,
		})
	}
	return out
}

// TenureBucketLimit caps the tenure step at the first buckets in ascending
// tenure order. It is a display limit, not a ranking by charges.
const TenureBucketLimit = 15

type TenureMean struct {
	Tenure float64 `json:"tenure"`
	Mean   float64 `json:"mean"`
	// Valid is false when no record in the bucket has Total_Charges.
	Valid bool `json:"valid"`
}

type TenureMeans struct {
	Buckets int          `json:"buckets"`
	Points  []TenureMean `json:"points"`
}

func meanTotalByTenure(ds *dataset.Dataset) TenureMeans {
	acc := make(map[float64]*meanAcc)
	for _, rec := range ds.Records {
		if !rec.TenureMonths.Valid {
			continue
		}
		a, ok := acc[rec.TenureMonths.Value]
		if !ok {
			a = &meanAcc{}
			acc[rec.TenureMonths.Value] = a
		}
		a.add(rec.TotalCharges)
	}

	tenures := make([]float64, 0, len(acc))
	for t := range acc {
		tenures = append(tenures, t)
	}
	sort.Float64s(tenures)

	out := TenureMeans{Buckets: len(tenures)}
	if len(tenures) > TenureBucketLimit {
		tenures = tenures[:TenureBucketLimit]
	}
	for _, t := range tenures {
		a := acc[t]
		out.Points = append(out.Points, TenureMean{Tenure: t, Mean: a.mean(), Valid: a.n > 0})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
