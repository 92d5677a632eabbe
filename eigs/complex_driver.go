package eigs

import (
	"fmt"
	"math"

	"github.com/itohio/tensorcore/randsrc"
	"gonum.org/v1/gonum/mat"
)

// ComplexDriver is Driver's counterpart for complex Hermitian
// operators (A = Aᴴ), driven the same way but over []complex128
// vectors with conjugate inner products. It targets EigsHermitian.
type ComplexDriver struct {
	n, nev, ncv, maxit int
	tol                float64
	which              Which

	state  State
	errMsg string

	v [][]complex128
	h [][]complex128 // one column per completed step, same layout as Driver.h

	step        int
	restarts    int
	maxRestarts int

	pendingX       []complex128
	pendingY       []complex128
	pendingSubdiag float64

	result Eigenpairs
}

// NewComplex constructs a driver for an n-dimensional complex
// Hermitian operator. which may be any selector except LI/SI, which
// are meaningless once A is Hermitian (its spectrum is real).
func NewComplex(n int, which Which, nev int) (*ComplexDriver, error) {
	if err := validateConstruction(n, nev); err != nil {
		return nil, err
	}
	if rejectsImaginarySelector(which) {
		return nil, fmt.Errorf("%w: Hermitian spectra are real, LI/SI are meaningless", ErrInvalidConstruction)
	}
	ncv := defaultNcv(nev, n)
	d := &ComplexDriver{
		n:     n,
		nev:   nev,
		ncv:   ncv,
		maxit: defaultMaxit(n, ncv),
		tol:   1e-10,
		which: which,
		state: Initialized,
	}
	d.maxRestarts = d.maxit / d.ncv
	if d.maxRestarts < 1 {
		d.maxRestarts = 1
	}
	return d, nil
}

func normalizeC(v []complex128) []complex128 {
	var n float64
	for _, x := range v {
		n += real(x)*real(x) + imag(x)*imag(x)
	}
	n = math.Sqrt(n)
	out := make([]complex128, len(v))
	if n == 0 {
		out[0] = 1
		return out
	}
	for i, x := range v {
		out[i] = x / complex(n, 0)
	}
	return out
}

// dotC computes the conjugate-linear inner product <a, b> = sum
// conj(a_i) * b_i, as used by Hermitian Lanczos.
func dotC(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += complex(real(a[i]), -imag(a[i])) * b[i]
	}
	return s
}

func (d *ComplexDriver) SetTolerance(tol float64) { d.tol = tol }

func (d *ComplexDriver) SetMaxIter(maxit int) {
	d.maxit = maxit
	d.maxRestarts = maxit / d.ncv
	if d.maxRestarts < 1 {
		d.maxRestarts = 1
	}
}

func (d *ComplexDriver) State() State { return d.state }
func (d *ComplexDriver) Err() string  { return d.errMsg }

func (d *ComplexDriver) GetX() []complex128 {
	if d.state != Running {
		panic(fmt.Errorf("%w: GetX outside Running", ErrWrongState))
	}
	out := make([]complex128, d.n)
	copy(out, d.pendingX)
	return out
}

func (d *ComplexDriver) SetY(y []complex128) {
	if d.state != Running {
		panic(fmt.Errorf("%w: SetY outside Running", ErrWrongState))
	}
	if len(y) != d.n {
		panic(fmt.Errorf("%w: y length %d != n %d", ErrInvalidConstruction, len(y), d.n))
	}
	d.pendingY = y
}

func (d *ComplexDriver) Update() State {
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

func (d *ComplexDriver) startRun() {
	if d.v == nil {
		start := make([]complex128, d.n)
		for i := range start {
			start[i] = complex(randsrc.Rand[float64](), randsrc.Rand[float64]())
		}
		d.v = [][]complex128{normalizeC(start)}
	}
	d.h = nil
	d.step = 0
	d.pendingX = d.v[0]
	d.state = Running
}

func (d *ComplexDriver) advance() {
	if d.pendingY == nil {
		d.pendingX = d.v[d.step]
		return
	}
	w := make([]complex128, d.n)
	copy(w, d.pendingY)
	d.pendingY = nil

	col := make([]complex128, d.step+1)
	for pass := 0; pass < 2; pass++ {
		for i := 0; i <= d.step; i++ {
			coeff := dotC(d.v[i], w)
			col[i] += coeff
			for k := range w {
				w[k] -= coeff * d.v[i][k]
			}
		}
	}

	var sq float64
	for _, x := range w {
		sq += real(x)*real(x) + imag(x)*imag(x)
	}
	beta := math.Sqrt(sq)

	col = append(col, complex(beta, 0))
	d.h = append(d.h, col)
	d.pendingSubdiag = beta

	d.step++

	if beta < 1e-13 || d.step >= d.ncv || d.step >= d.n {
		d.ritz()
		return
	}

	next := make([]complex128, d.n)
	for i, x := range w {
		next[i] = x / complex(beta, 0)
	}
	d.v = append(d.v, next)
	d.pendingX = next
}

// ritz diagonalizes the step x step leading (Hermitian) projected
// matrix by embedding it as a 2m x 2m real symmetric matrix M =
// [[Re H, -Im H], [Im H, Re H]] — whose eigenvalues equal H's (each
// doubled) and whose eigenvectors (x, y) per eigenvalue recombine as
// x + iy into H's eigenvectors — then uses mat.EigenSym on M.
func (d *ComplexDriver) ritz() {
	m := d.step
	hc := make([][]complex128, m)
	for i := range hc {
		hc[i] = make([]complex128, m)
	}
	for j, col := range d.h {
		for i, v := range col {
			if i < m && j < m {
				hc[i][j] = v
				hc[j][i] = complex(real(v), -imag(v))
			}
		}
	}

	embed := mat.NewSymDense(2*m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			re, im := real(hc[i][j]), imag(hc[i][j])
			embed.SetSym(i, j, re)
			embed.SetSym(m+i, m+j, re)
			embed.SetSym(i, m+j, -im)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(embed, true) {
		d.state = Error
		d.errMsg = "eigs: Hermitian projection eigendecomposition failed to converge"
		return
	}
	values := make([]float64, 2*m)
	eig.Values(values)
	vecs := eig.VectorsTo(nil)

	type cand struct {
		val complex128
		vec []complex128
	}
	seen := make([]bool, 2*m)
	var cands []cand
	for i := 0; i < 2*m; i++ {
		if seen[i] {
			continue
		}
		// pair i with the nearest duplicate eigenvalue
		best := -1
		for j := i + 1; j < 2*m; j++ {
			if !seen[j] && math.Abs(values[j]-values[i]) < 1e-8*math.Max(1, math.Abs(values[i])) {
				best = j
				break
			}
		}
		if best == -1 {
			best = i
		}
		seen[i] = true
		seen[best] = true

		vec := make([]complex128, m)
		for k := 0; k < m; k++ {
			vec[k] = complex(vecs.At(k, i), vecs.At(m+k, i))
		}
		cands = append(cands, cand{val: complex(values[i], 0), vec: vec})
	}

	ritzVals := make([]complex128, len(cands))
	ritzVecs := make([][]complex128, len(cands))
	for i, c := range cands {
		ritzVals[i] = c.val
		ritzVecs[i] = normalizeComplexVec(c.vec)
	}
	SortValues(ritzVals, ritzVecs, d.which)

	beta := d.pendingSubdiag
	converged := d.nev <= len(ritzVals)
	for k := 0; k < d.nev && k < len(ritzVals); k++ {
		last := ritzVecs[k][m-1]
		residual := beta * cabs(last)
		if residual > d.tol*math.Max(1, cabs(ritzVals[k])) {
			converged = false
		}
	}

	if converged {
		d.finish(ritzVals, ritzVecs, m)
		return
	}

	if beta < 1e-13 {
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

	restart := make([]complex128, d.n)
	best := ritzVecs[0]
	for i := 0; i < m; i++ {
		coeff := best[i]
		for k := 0; k < d.n; k++ {
			restart[k] += coeff * d.v[i][k]
		}
	}
	d.v = [][]complex128{normalizeC(restart)}
	d.h = nil
	d.step = 0
	d.pendingX = d.v[0]
	d.state = Running
}

func normalizeComplexVec(v []complex128) []complex128 {
	var n float64
	for _, x := range v {
		n += real(x)*real(x) + imag(x)*imag(x)
	}
	n = math.Sqrt(n)
	if n == 0 {
		return v
	}
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = x / complex(n, 0)
	}
	return out
}

func (d *ComplexDriver) finish(ritzVals []complex128, ritzVecs [][]complex128, m int) {
	k := d.nev
	if k > len(ritzVals) {
		k = len(ritzVals)
	}
	values := make([]complex128, k)
	vectors := make([][]complex128, k)
	for idx := 0; idx < k; idx++ {
		values[idx] = ritzVals[idx]
		full := make([]complex128, d.n)
		for i := 0; i < m; i++ {
			coeff := ritzVecs[idx][i]
			for row := 0; row < d.n; row++ {
				full[row] += coeff * d.v[i][row]
			}
		}
		vectors[idx] = full
	}
	d.result = Eigenpairs{Values: values, Vectors: vectors}
	if d.state != TooManyIterations {
		d.state = Finished
	}
}

func (d *ComplexDriver) GetData(out *Eigenpairs) {
	if d.state != Finished && d.state != TooManyIterations && d.state != NoConvergence {
		panic(fmt.Errorf("%w: GetData outside Finished/TooManyIterations/NoConvergence", ErrWrongState))
	}
	*out = d.result
}
