package drift

import (
	"math"
	"sort"
)

// laplaceAlpha is the pseudo-count added to every bin/category before
// converting counts to probabilities, so PSI and JS never hit log(0).
const laplaceAlpha = 1.0

// ksStatistic computes the two-sample Kolmogorov-Smirnov statistic
// D = sup |F_ref(x) - F_cur(x)| over the empirical CDFs.
// Inputs must be sorted ascending. The CDF gap is taken only after a tied
// value is fully consumed on both sides, so repeated values with different
// multiplicities do not overstate D.
func ksStatistic(ref, cur []float64) float64 {
	n1, n2 := len(ref), len(cur)
	var i, j int
	var d float64
	for i < n1 && j < n2 {
		v := ref[i]
		if cur[j] < v {
			v = cur[j]
		}
		for i < n1 && ref[i] == v {
			i++
		}
		for j < n2 && cur[j] == v {
			j++
		}
		diff := math.Abs(float64(i)/float64(n1) - float64(j)/float64(n2))
		if diff > d {
			d = diff
		}
	}
	return d
}

// ksPValue returns the asymptotic two-sample KS p-value for statistic d.
func ksPValue(d float64, n1, n2 int) float64 {
	en := math.Sqrt(float64(n1) * float64(n2) / float64(n1+n2))
	lambda := (en + 0.12 + 0.11/en) * d
	return kolmogorovQ(lambda)
}

// kolmogorovQ evaluates Q_KS(lambda) = 2 * sum_{k>=1} (-1)^{k-1} exp(-2 k^2 lambda^2).
func kolmogorovQ(lambda float64) float64 {
	if lambda <= 0 {
		return 1.0
	}
	a2 := -2.0 * lambda * lambda
	sum := 0.0
	sign := 1.0
	prev := 0.0
	for k := 1; k <= 100; k++ {
		term := sign * 2.0 * math.Exp(a2*float64(k*k))
		sum += term
		if math.Abs(term) <= 1e-12*prev || math.Abs(term) < 1e-300 {
			return clampUnit(sum)
		}
		prev = math.Abs(term)
		sign = -sign
	}
	return clampUnit(sum)
}

// wassersteinDistance computes the 1-D earth mover's distance between two
// empirical distributions by integrating |F_ref - F_cur| over the merged
// support. Inputs must be sorted ascending.
func wassersteinDistance(ref, cur []float64) float64 {
	n1, n2 := len(ref), len(cur)
	merged := make([]float64, 0, n1+n2)
	merged = append(merged, ref...)
	merged = append(merged, cur...)
	sort.Float64s(merged)

	var dist float64
	var i, j int
	for k := 0; k < len(merged)-1; k++ {
		for i < n1 && ref[i] <= merged[k] {
			i++
		}
		for j < n2 && cur[j] <= merged[k] {
			j++
		}
		gap := merged[k+1] - merged[k]
		if gap > 0 {
			cdfRef := float64(i) / float64(n1)
			cdfCur := float64(j) / float64(n2)
			dist += math.Abs(cdfRef-cdfCur) * gap
		}
	}
	return dist
}

// histogramProbs bins both samples into numBins equal-width bins spanning the
// union of ranges and converts counts to Laplace-smoothed probabilities.
func histogramProbs(ref, cur []float64, numBins int) (p, q []float64) {
	lo := math.Min(ref[0], cur[0])
	hi := math.Max(ref[len(ref)-1], cur[len(cur)-1])
	if hi <= lo {
		// Single shared point: both collapse to one bin.
		return []float64{1.0}, []float64{1.0}
	}
	width := (hi - lo) / float64(numBins)

	binIndex := func(v float64) int {
		idx := int((v - lo) / width)
		if idx >= numBins {
			idx = numBins - 1
		}
		return idx
	}

	pc := make([]float64, numBins)
	qc := make([]float64, numBins)
	for _, v := range ref {
		pc[binIndex(v)]++
	}
	for _, v := range cur {
		qc[binIndex(v)]++
	}
	return smoothProbs(pc), smoothProbs(qc)
}

// smoothProbs converts raw counts to probabilities with Laplace smoothing.
func smoothProbs(counts []float64) []float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	denom := total + laplaceAlpha*float64(len(counts))
	probs := make([]float64, len(counts))
	for i, c := range counts {
		probs[i] = (c + laplaceAlpha) / denom
	}
	return probs
}

// jensenShannon computes the Jensen-Shannon divergence (natural log, bounded
// by ln 2) between two probability vectors of equal length.
func jensenShannon(p, q []float64) float64 {
	var js float64
	for i := range p {
		m := 0.5 * (p[i] + q[i])
		if p[i] > 0 {
			js += 0.5 * p[i] * math.Log(p[i]/m)
		}
		if q[i] > 0 {
			js += 0.5 * q[i] * math.Log(q[i]/m)
		}
	}
	if js < 0 {
		js = 0
	}
	return js
}

// populationStabilityIndex computes PSI over aligned smoothed probability
// vectors: sum (cur - ref) * ln(cur / ref).
func populationStabilityIndex(ref, cur []float64) float64 {
	var psi float64
	for i := range ref {
		psi += (cur[i] - ref[i]) * math.Log(cur[i]/ref[i])
	}
	if psi < 0 {
		psi = 0
	}
	return psi
}

// chiSquareTest runs a chi-square test of independence on a 2xK contingency
// table of reference vs current category counts. Returns the statistic, the
// p-value, and whether any expected cell fell below the validity threshold.
func chiSquareTest(refCounts, curCounts []float64) (stat, pValue float64, lowExpected bool) {
	k := len(refCounts)
	refTotal, curTotal := 0.0, 0.0
	colTotals := make([]float64, k)
	for i := 0; i < k; i++ {
		refTotal += refCounts[i]
		curTotal += curCounts[i]
		colTotals[i] = refCounts[i] + curCounts[i]
	}
	grand := refTotal + curTotal

	dof := 0
	for i := 0; i < k; i++ {
		if colTotals[i] == 0 {
			continue
		}
		dof++
		expRef := refTotal * colTotals[i] / grand
		expCur := curTotal * colTotals[i] / grand
		if expRef < 5 || expCur < 5 {
			lowExpected = true
		}
		stat += (refCounts[i] - expRef) * (refCounts[i] - expRef) / expRef
		stat += (curCounts[i] - expCur) * (curCounts[i] - expCur) / expCur
	}
	dof-- // (rows-1) * (cols-1) with rows = 2

	if dof < 1 {
		return 0, 1.0, lowExpected
	}
	return stat, chiSquarePValue(stat, dof), lowExpected
}

// chiSquarePValue returns P(X >= stat) for a chi-square distribution with
// dof degrees of freedom, via the regularized upper incomplete gamma.
func chiSquarePValue(stat float64, dof int) float64 {
	if stat <= 0 {
		return 1.0
	}
	return clampUnit(gammaQ(float64(dof)/2.0, stat/2.0))
}

// gammaQ is the regularized upper incomplete gamma function Q(a, x).
func gammaQ(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return math.NaN()
	}
	if x == 0 {
		return 1.0
	}
	if x < a+1.0 {
		return 1.0 - gammaPSeries(a, x)
	}
	return gammaQContinuedFraction(a, x)
}

// gammaPSeries evaluates P(a, x) by series expansion, valid for x < a+1.
func gammaPSeries(a, x float64) float64 {
	ap := a
	sum := 1.0 / a
	del := sum
	for i := 0; i < 500; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*1e-15 {
			break
		}
	}
	lg, _ := math.Lgamma(a)
	return sum * math.Exp(-x+a*math.Log(x)-lg)
}

// gammaQContinuedFraction evaluates Q(a, x) by modified Lentz continued
// fraction, valid for x >= a+1.
func gammaQContinuedFraction(a, x float64) float64 {
	const tiny = 1e-300
	b := x + 1.0 - a
	c := 1.0 / tiny
	d := 1.0 / b
	h := d
	for i := 1; i <= 500; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2.0
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1.0 / d
		del := d * c
		h *= del
		if math.Abs(del-1.0) < 1e-15 {
			break
		}
	}
	lg, _ := math.Lgamma(a)
	return math.Exp(-x+a*math.Log(x)-lg) * h
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
