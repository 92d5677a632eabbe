package eigs

import (
	"fmt"
	"math"

	"github.com/itohio/tensorcore/randsrc"
	"gonum.org/v1/gonum/mat"
)

// Driver runs Arnoldi iteration (which reduces to Lanczos when the
// supplied operator is symmetric) behind the ARPACK-style state
// machine described in the package doc. It never touches the operator
// directly: the caller supplies y = A*x on every Running step via
// GetX/SetY.
type Driver struct {
	n, nev, ncv, maxit int
	tol                float64
	which              Which

	state  State
	errMsg string

	v [][]float64 // Arnoldi basis, v[0..step]
	h [][]float64 // Hessenberg coefficients, one column per completed step:
	// h[j] = [h(0,j), ..., h(j,j), h(j+1,j)]

	step     int
	restarts int
	maxRestarts int

	pendingX       []float64
	pendingY       []float64
	pendingSubdiag float64

	result Eigenpairs
}

// New constructs a driver for an n-dimensional real operator,
// targeting nev eigenpairs in the spectral region which. n_ev must
// satisfy 1 <= n_ev <= n-1; which may not be LI/SI (those selectors
// only make sense once complex arithmetic is in play — see
// EigsHermitian/ComplexDriver).
func New(n int, which Which, nev int) (*Driver, error) {
	if err := validateConstruction(n, nev); err != nil {
		return nil, err
	}
	if rejectsImaginarySelector(which) {
		return nil, fmt.Errorf("%w: real problems cannot target LI/SI", ErrInvalidConstruction)
	}

	ncv := defaultNcv(nev, n)
	d := &Driver{
		n:           n,
		nev:         nev,
		ncv:         ncv,
		maxit:       defaultMaxit(n, ncv),
		tol:         1e-10,
		which:       which,
		state:       Initialized,
		maxRestarts: 0,
	}
	d.maxRestarts = d.maxit / d.ncv
	if d.maxRestarts < 1 {
		d.maxRestarts = 1
	}
	return d, nil
}

// SetStartVector overrides the default (random) starting vector. v
// must have length n; it is normalized internally.
func (d *Driver) SetStartVector(v []float64) {
	if d.state != Initialized {
		panic(fmt.Errorf("%w: SetStartVector after Update has begun", ErrWrongState))
	}
	if len(v) != d.n {
		panic(fmt.Errorf("%w: start vector length %d != n %d", ErrInvalidConstruction, len(v), d.n))
	}
	d.v = [][]float64{normalize(v)}
}

// SetTolerance overrides the default residual tolerance (1e-10).
func (d *Driver) SetTolerance(tol float64) { d.tol = tol }

// SetMaxIter overrides the default restart budget.
func (d *Driver) SetMaxIter(maxit int) {
	d.maxit = maxit
	d.maxRestarts = maxit / d.ncv
	if d.maxRestarts < 1 {
		d.maxRestarts = 1
	}
}

// State returns the driver's current reverse-communication state.
func (d *Driver) State() State { return d.state }

// Err returns the diagnostic recorded when State() == Error.
func (d *Driver) Err() string { return d.errMsg }

func normalize(v []float64) []float64 {
	var n float64
	for _, x := range v {
		n += x * x
	}
	n = math.Sqrt(n)
	out := make([]float64, len(v))
	if n == 0 {
		out[0] = 1
		return out
	}
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func dotR(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// GetX returns the vector the driver wants multiplied by A. Valid
// only while State() == Running.
func (d *Driver) GetX() []float64 {
	if d.state != Running {
		panic(fmt.Errorf("%w: GetX outside Running", ErrWrongState))
	}
	out := make([]float64, d.n)
	copy(out, d.pendingX)
	return out
}

// SetY supplies y = A*x for the vector last returned by GetX. Valid
// only while State() == Running.
func (d *Driver) SetY(y []float64) {
	if d.state != Running {
		panic(fmt.Errorf("%w: SetY outside Running", ErrWrongState))
	}
	if len(y) != d.n {
		panic(fmt.Errorf("%w: y length %d != n %d", ErrInvalidConstruction, len(y), d.n))
	}
	d.pendingY = y
}

// Update advances the state machine by one step. It must be called
// only while State() is Initialized or Running.
func (d *Driver) Update() State {
	switch d.state {
	case Initialized:
		d.startRun()
		return d.state
	case Running:
		d.advance()
		return d.state
	default:
		panic(fmt.Errorf("%w: Update called in state %s", ErrWrongState, d.state))
	}
}

func (d *Driver) startRun() {
	if d.v == nil {
		start := make([]float64, d.n)
		for i := range start {
			start[i] = randsrc.Rand[float64]()
		}
		d.v = [][]float64{normalize(start)}
	}
	d.h = nil
	d.step = 0
	d.pendingX = d.v[0]
	d.state = Running
}

// advance consumes d.pendingY (A * v[step]) to complete one Arnoldi
// step, then either requests the next product, runs a Ritz analysis,
// or restarts.
func (d *Driver) advance() {
	if d.pendingY == nil {
		// Caller called Update twice without an intervening SetY;
		// re-issue the same request.
		d.pendingX = d.v[d.step]
		return
	}

	w := make([]float64, d.n)
	copy(w, d.pendingY)
	d.pendingY = nil

	col := make([]float64, d.step+1)
	for i := 0; i <= d.step; i++ {
		coeff := dotR(d.v[i], w)
		col[i] = coeff
		for k := range w {
			w[k] -= coeff * d.v[i][k]
		}
	}
	// Reorthogonalize once against the existing basis (classical
	// Gram-Schmidt drifts after a few dozen steps in float64).
	for i := 0; i <= d.step; i++ {
		coeff := dotR(d.v[i], w)
		col[i] += coeff
		for k := range w {
			w[k] -= coeff * d.v[i][k]
		}
	}

	beta := math.Sqrt(dotR(w, w))
	// col now holds h(0,step)..h(step,step); appending beta makes it
	// h(0,step)..h(step+1,step) — the (step+1)-th row is the
	// subdiagonal entry of the Arnoldi relation, excluded from the
	// square Ritz matrix but used below as the residual estimate.
	col = append(col, beta)
	d.h = append(d.h, col)
	d.pendingSubdiag = beta

	d.step++

	if beta < 1e-13 || d.step >= d.ncv || d.step >= d.n {
		d.ritz()
		return
	}

	next := make([]float64, d.n)
	for i, x := range w {
		next[i] = x / beta
	}
	d.v = append(d.v, next)
	d.pendingX = next
}

// ritz diagonalizes the step x step leading Hessenberg block,
// estimates residuals via beta * last-component-of-eigenvector, and
// decides whether to finish, restart, or give up.
func (d *Driver) ritz() {
	m := d.step
	hd := mat.NewDense(m, m, nil)
	for j, col := range d.h {
		for i, v := range col {
			if i < m && j < m {
				hd.Set(i, j, v)
			}
		}
	}

	var eig mat.Eigen
	ok := eig.Factorize(hd, mat.EigenRight)
	if !ok {
		d.state = Error
		d.errMsg = "eigs: Hessenberg eigendecomposition failed to converge"
		return
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	ritzVals := make([]complex128, m)
	copy(ritzVals, values)
	ritzVecs := make([][]complex128, m)
	for k := 0; k < m; k++ {
		col := make([]complex128, m)
		for i := 0; i < m; i++ {
			col[i] = vecs.At(i, k)
		}
		ritzVecs[k] = col
	}
	SortValues(ritzVals, ritzVecs, d.which)

	beta := d.pendingSubdiag
	converged := d.nev <= m
	maxResidual := 0.0
	for k := 0; k < d.nev && k < m; k++ {
		last := ritzVecs[k][m-1]
		residual := beta * cabs(last)
		if residual > maxResidual {
			maxResidual = residual
		}
		if residual > d.tol*math.Max(1, cabs(ritzVals[k])) {
			converged = false
		}
	}

	if converged {
		d.finish(ritzVals, ritzVecs, m)
		return
	}

	if beta < 1e-13 {
		// Invariant subspace found but it doesn't contain the
		// requested eigenpairs; restarting from it would just
		// reproduce the same subspace, so this is unrecoverable
		// rather than a budget problem.
		d.finish(ritzVals, ritzVecs, m)
		d.state = NoConvergence
		return
	}

	d.restarts++
	if d.restarts >= d.maxRestarts {
		d.finish(ritzVals, ritzVecs, m)
		d.state = TooManyIterations
		return
	}

	// Explicit restart from the best current Ritz vector lifted
	// back into the original n-dimensional space.
	restart := make([]float64, d.n)
	best := ritzVecs[0]
	for i := 0; i < m; i++ {
		coeff := real(best[i])
		for k := 0; k < d.n; k++ {
			restart[k] += coeff * d.v[i][k]
		}
	}
	d.v = [][]float64{normalize(restart)}
	d.h = nil
	d.step = 0
	d.pendingX = d.v[0]
	d.state = Running
}

func (d *Driver) finish(ritzVals []complex128, ritzVecs [][]complex128, m int) {
	k := d.nev
	if k > m {
		k = m
	}
	values := make([]complex128, k)
	vectors := make([][]complex128, k)
	for idx := 0; idx < k; idx++ {
		values[idx] = ritzVals[idx]
		full := make([]complex128, d.n)
		for i := 0; i < m; i++ {
			coeff := ritzVecs[idx][i]
			for row := 0; row < d.n; row++ {
				full[row] += coeff * complex(d.v[i][row], 0)
			}
		}
		vectors[idx] = full
	}
	d.result = Eigenpairs{Values: values, Vectors: vectors}
	if d.state != TooManyIterations {
		d.state = Finished
	}
}

// GetData copies the converged (or, after TooManyIterations/
// NoConvergence, partial) eigenpairs into out. Valid once State() is
// Finished, TooManyIterations, or NoConvergence — the latter two
// relax the strict "Finished only" reading of the contract so callers
// can inspect the partial results those states' own names promise.
func (d *Driver) GetData(out *Eigenpairs) {
	if d.state != Finished && d.state != TooManyIterations && d.state != NoConvergence {
		panic(fmt.Errorf("%w: GetData outside Finished/TooManyIterations/NoConvergence", ErrWrongState))
	}
	*out = d.result
}
