package eigs

// MatVec multiplies an implicit real linear operator by a vector,
// the matrix-free contract Eigs/EigsGen are driven with.
type MatVec func(x []float64) []float64

// ComplexMatVec is MatVec's Hermitian-operator counterpart for
// EigsHermitian.
type ComplexMatVec func(x []complex128) []complex128

// Eigs drives a Driver over apply to completion and returns its
// eigenvalues (as complex128, since A need not be symmetric) and,
// when wantVectors, the corresponding eigenvectors.
func Eigs(apply MatVec, n int, which Which, nev int, wantVectors bool) (Eigenpairs, State, error) {
	d, err := New(n, which, nev)
	if err != nil {
		return Eigenpairs{}, Error, err
	}
	for {
		switch d.Update() {
		case Running:
			d.SetY(apply(d.GetX()))
		case Finished, TooManyIterations, NoConvergence:
			var out Eigenpairs
			d.GetData(&out)
			if !wantVectors {
				out.Vectors = nil
			}
			return out, d.State(), nil
		case Error:
			return Eigenpairs{}, Error, newFactorizationError(d.Err())
		}
	}
}

// EigsGen is Eigs under a name that mirrors the spec's explicit
// "real, non-symmetric" entry point; the underlying Arnoldi driver is
// identical (it makes no symmetry assumption).
func EigsGen(apply MatVec, n int, which Which, nev int, wantVectors bool) (Eigenpairs, State, error) {
	return Eigs(apply, n, which, nev, wantVectors)
}

// EigsHermitian drives a ComplexDriver over a complex Hermitian
// operator to completion.
func EigsHermitian(apply ComplexMatVec, n int, which Which, nev int, wantVectors bool) (Eigenpairs, State, error) {
	d, err := NewComplex(n, which, nev)
	if err != nil {
		return Eigenpairs{}, Error, err
	}
	for {
		switch d.Update() {
		case Running:
			d.SetY(apply(d.GetX()))
		case Finished, TooManyIterations, NoConvergence:
			var out Eigenpairs
			d.GetData(&out)
			if !wantVectors {
				out.Vectors = nil
			}
			return out, d.State(), nil
		case Error:
			return Eigenpairs{}, Error, newFactorizationError(d.Err())
		}
	}
}

// errFactorizationFailed wraps the driver's diagnostic string as an
// error without importing linalg (eigs has no other reason to depend
// on it).
type errFactorizationFailed string

func (e errFactorizationFailed) Error() string { return string(e) }

func newFactorizationError(msg string) error { return errFactorizationFailed(msg) }
