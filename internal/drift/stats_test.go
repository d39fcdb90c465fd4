package drift

import (
	"math"
	"testing"
)

func TestKSStatisticIdenticalSamples(t *testing.T) {
	sample := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	if d := ksStatistic(sample, sample); d != 0 {
		t.Errorf("expected D=0 for identical samples, got %f", d)
	}
}

func TestKSStatisticDisjointSamples(t *testing.T) {
	ref := []float64{1, 2, 3}
	cur := []float64{10, 11, 12}
	if d := ksStatistic(ref, cur); d != 1.0 {
		t.Errorf("expected D=1 for disjoint samples, got %f", d)
	}
}

func TestKSStatisticTiedValues(t *testing.T) {
	// Equal support with different multiplicities: both CDFs hit 1 at the
	// same point, so the supremum is 0.
	if d := ksStatistic([]float64{1, 1}, []float64{1}); d != 0 {
		t.Errorf("expected D=0 for tied single-value samples, got %f", d)
	}

	// F_ref(1) = 2/3 vs F_cur(1) = 1/3 is the largest gap.
	d := ksStatistic([]float64{1, 1, 2}, []float64{1, 2, 2})
	if math.Abs(d-1.0/3.0) > 1e-12 {
		t.Errorf("expected D=1/3 for tied samples, got %f", d)
	}
}

func TestKSStatisticIncreasesWithShift(t *testing.T) {
	ref := make([]float64, 100)
	small := make([]float64, 100)
	large := make([]float64, 100)
	for i := range ref {
		ref[i] = float64(i)
		small[i] = float64(i) + 5
		large[i] = float64(i) + 50
	}
	dSmall := ksStatistic(ref, small)
	dLarge := ksStatistic(ref, large)
	if dLarge <= dSmall {
		t.Errorf("expected larger shift to yield larger D: small=%f large=%f", dSmall, dLarge)
	}
}

func TestKolmogorovQBounds(t *testing.T) {
	if q := kolmogorovQ(0); q != 1.0 {
		t.Errorf("Q(0) = %f, want 1", q)
	}
	if q := kolmogorovQ(-1); q != 1.0 {
		t.Errorf("Q(-1) = %f, want 1", q)
	}
	prev := 1.0
	for _, lambda := range []float64{0.5, 1.0, 1.5, 2.0, 3.0} {
		q := kolmogorovQ(lambda)
		if q < 0 || q > 1 {
			t.Errorf("Q(%f) = %f out of [0,1]", lambda, q)
		}
		if q >= prev {
			t.Errorf("Q not decreasing at lambda=%f: %f >= %f", lambda, q, prev)
		}
		prev = q
	}
	// Q(1.0) is approximately 0.27, a standard reference value.
	if q := kolmogorovQ(1.0); math.Abs(q-0.27) > 0.01 {
		t.Errorf("Q(1.0) = %f, want ~0.27", q)
	}
}

func TestWassersteinKnownValue(t *testing.T) {
	// {0,1} vs {1,2}: every unit of mass moves by exactly 1.
	d := wassersteinDistance([]float64{0, 1}, []float64{1, 2})
	if math.Abs(d-1.0) > 1e-12 {
		t.Errorf("wasserstein({0,1},{1,2}) = %f, want 1", d)
	}
}

func TestWassersteinShiftEqualsOffset(t *testing.T) {
	ref := []float64{1, 2, 3, 4, 5}
	cur := []float64{4, 5, 6, 7, 8}
	d := wassersteinDistance(ref, cur)
	if math.Abs(d-3.0) > 1e-12 {
		t.Errorf("wasserstein shift = %f, want 3", d)
	}
}

func TestWassersteinIdenticalIsZero(t *testing.T) {
	sample := []float64{1, 2, 3, 4}
	if d := wassersteinDistance(sample, sample); d != 0 {
		t.Errorf("wasserstein identical = %f, want 0", d)
	}
}

func TestJensenShannonBounds(t *testing.T) {
	uniform := []float64{0.25, 0.25, 0.25, 0.25}
	if js := jensenShannon(uniform, uniform); js != 0 {
		t.Errorf("JS(p,p) = %f, want 0", js)
	}

	p := []float64{1, 0}
	q := []float64{0, 1}
	js := jensenShannon(p, q)
	if math.Abs(js-math.Ln2) > 1e-12 {
		t.Errorf("JS(disjoint) = %f, want ln2 = %f", js, math.Ln2)
	}
}

func TestPSIIdenticalIsZero(t *testing.T) {
	probs := []float64{0.5, 0.3, 0.2}
	if psi := populationStabilityIndex(probs, probs); psi != 0 {
		t.Errorf("PSI(p,p) = %f, want 0", psi)
	}
}

func TestPSIPositiveForShift(t *testing.T) {
	ref := []float64{0.7, 0.2, 0.1}
	cur := []float64{0.2, 0.2, 0.6}
	if psi := populationStabilityIndex(ref, cur); psi <= 0 {
		t.Errorf("PSI for shifted distribution = %f, want > 0", psi)
	}
}

func TestSmoothProbsSumToOne(t *testing.T) {
	probs := smoothProbs([]float64{10, 0, 5})
	sum := 0.0
	for _, p := range probs {
		sum += p
		if p <= 0 {
			t.Errorf("smoothed probability %f not strictly positive", p)
		}
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("smoothed probabilities sum to %f, want 1", sum)
	}
}

func TestChiSquarePValueReferencePoint(t *testing.T) {
	// chi2 critical value at alpha=0.05 with 1 dof.
	p := chiSquarePValue(3.841459, 1)
	if math.Abs(p-0.05) > 1e-3 {
		t.Errorf("p(3.841, dof=1) = %f, want ~0.05", p)
	}

	if p := chiSquarePValue(0, 3); p != 1.0 {
		t.Errorf("p(0) = %f, want 1", p)
	}
	if p := chiSquarePValue(100, 1); p > 1e-10 {
		t.Errorf("p(100, dof=1) = %g, want ~0", p)
	}
}

func TestChiSquareTestIdenticalCounts(t *testing.T) {
	ref := []float64{50, 30, 20}
	cur := []float64{50, 30, 20}
	stat, p, low := chiSquareTest(ref, cur)
	if stat != 0 {
		t.Errorf("stat = %f, want 0", stat)
	}
	if p != 1.0 {
		t.Errorf("p = %f, want 1", p)
	}
	if low {
		t.Error("unexpected low expected count flag")
	}
}

func TestChiSquareTestLowExpectedFlag(t *testing.T) {
	ref := []float64{5, 1}
	cur := []float64{5, 1}
	_, _, low := chiSquareTest(ref, cur)
	if !low {
		t.Error("expected low expected count flag for sparse cells")
	}
}

func TestGammaQAgreesWithErfc(t *testing.T) {
	// Q(1/2, x) = erfc(sqrt(x)) links the incomplete gamma to the normal tail.
	for _, x := range []float64{0.1, 0.5, 1.0, 2.0, 5.0} {
		got := gammaQ(0.5, x)
		want := math.Erfc(math.Sqrt(x))
		if math.Abs(got-want) > 1e-10 {
			t.Errorf("gammaQ(0.5, %f) = %g, want erfc(sqrt(x)) = %g", x, got, want)
		}
	}
}
