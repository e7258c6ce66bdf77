package localreg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Binary format: one leading version byte, then little-endian fixed-width
// floats and uvarint counts. Accumulator state round-trips exactly, so a
// traversal can be checkpointed mid-flight and resumed bit-identically.
const serialVersion byte = 1

var errShortBuffer = errors.New("localreg: short buffer")

func checkVersion(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errShortBuffer
	}
	if data[0] != serialVersion {
		return nil, fmt.Errorf("localreg: unknown format version %d", data[0])
	}
	return data[1:], nil
}

func appendFloat(buf []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
}

func parseFloat(data []byte) (float64, []byte, error) {
	if len(data) < 8 {
		return 0, nil, errShortBuffer
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data)), data[8:], nil
}

func parseCount(data []byte) (int, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, errShortBuffer
	}
	return int(v), data[n:], nil
}

func appendPair(buf []byte, p *MeanVariancePair) []byte {
	buf = binary.AppendUvarint(buf, uint64(p.count))
	buf = appendFloat(buf, p.numTerms)
	buf = appendFloat(buf, p.mean)
	return appendFloat(buf, p.m2)
}

func parsePair(data []byte, p *MeanVariancePair) ([]byte, error) {
	count, data, err := parseCount(data)
	if err != nil {
		return nil, err
	}
	p.count = count
	if p.numTerms, data, err = parseFloat(data); err != nil {
		return nil, err
	}
	if p.mean, data, err = parseFloat(data); err != nil {
		return nil, err
	}
	if p.m2, data, err = parseFloat(data); err != nil {
		return nil, err
	}
	return data, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *MeanVariancePair) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 1+3*8+2)
	buf = append(buf, serialVersion)
	return appendPair(buf, p), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *MeanVariancePair) UnmarshalBinary(data []byte) error {
	data, err := checkVersion(data)
	if err != nil {
		return err
	}
	_, err = parsePair(data, p)
	return err
}

func appendPairMatrix(buf []byte, m *MeanVariancePairMatrix) []byte {
	buf = binary.AppendUvarint(buf, uint64(m.rows))
	buf = binary.AppendUvarint(buf, uint64(m.cols))
	for i := range m.pairs {
		buf = appendPair(buf, &m.pairs[i])
	}
	return buf
}

func parsePairMatrix(data []byte, m *MeanVariancePairMatrix) ([]byte, error) {
	rows, data, err := parseCount(data)
	if err != nil {
		return nil, err
	}
	cols, data, err := parseCount(data)
	if err != nil {
		return nil, err
	}
	m.Init(rows, cols)
	for i := range m.pairs {
		if data, err = parsePair(data, &m.pairs[i]); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *MeanVariancePairMatrix) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 1+4+len(m.pairs)*26)
	buf = append(buf, serialVersion)
	return appendPairMatrix(buf, m), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *MeanVariancePairMatrix) UnmarshalBinary(data []byte) error {
	data, err := checkVersion(data)
	if err != nil {
		return err
	}
	_, err = parsePairMatrix(data, m)
	return err
}

func appendPairVector(buf []byte, v *MeanVariancePairVector) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(v.pairs)))
	for i := range v.pairs {
		buf = appendPair(buf, &v.pairs[i])
	}
	return buf
}

func parsePairVector(data []byte, v *MeanVariancePairVector) ([]byte, error) {
	n, data, err := parseCount(data)
	if err != nil {
		return nil, err
	}
	v.Init(n)
	for i := range v.pairs {
		if data, err = parsePair(data, &v.pairs[i]); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (v *MeanVariancePairVector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 1+2+len(v.pairs)*26)
	buf = append(buf, serialVersion)
	return appendPairVector(buf, v), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (v *MeanVariancePairVector) UnmarshalBinary(data []byte) error {
	data, err := checkVersion(data)
	if err != nil {
		return err
	}
	_, err = parsePairVector(data, v)
	return err
}

func appendPostponed(buf []byte, p *Postponed) []byte {
	buf = appendPairMatrix(buf, &p.LeftHandSideL)
	buf = appendPairMatrix(buf, &p.LeftHandSideE)
	buf = appendPairMatrix(buf, &p.LeftHandSideU)
	buf = appendPairVector(buf, &p.RightHandSideL)
	buf = appendPairVector(buf, &p.RightHandSideE)
	buf = appendPairVector(buf, &p.RightHandSideU)
	buf = appendFloat(buf, p.Pruned)
	return appendFloat(buf, p.UsedError)
}

func parsePostponed(data []byte, p *Postponed) ([]byte, error) {
	var err error
	if data, err = parsePairMatrix(data, &p.LeftHandSideL); err != nil {
		return nil, err
	}
	if data, err = parsePairMatrix(data, &p.LeftHandSideE); err != nil {
		return nil, err
	}
	if data, err = parsePairMatrix(data, &p.LeftHandSideU); err != nil {
		return nil, err
	}
	if data, err = parsePairVector(data, &p.RightHandSideL); err != nil {
		return nil, err
	}
	if data, err = parsePairVector(data, &p.RightHandSideE); err != nil {
		return nil, err
	}
	if data, err = parsePairVector(data, &p.RightHandSideU); err != nil {
		return nil, err
	}
	if p.Pruned, data, err = parseFloat(data); err != nil {
		return nil, err
	}
	if p.UsedError, data, err = parseFloat(data); err != nil {
		return nil, err
	}
	return data, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Postponed) MarshalBinary() ([]byte, error) {
	buf := []byte{serialVersion}
	return appendPostponed(buf, p), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Postponed) UnmarshalBinary(data []byte) error {
	data, err := checkVersion(data)
	if err != nil {
		return err
	}
	_, err = parsePostponed(data, p)
	return err
}

// MarshalBinary implements encoding.BinaryMarshaler. Predictions and
// coefficients are part of the encoding, so a fully post-processed result
// round-trips as well as a mid-traversal checkpoint.
func (res *Result) MarshalBinary() ([]byte, error) {
	buf := []byte{serialVersion}
	buf = binary.AppendUvarint(buf, uint64(res.rows))
	buf = binary.AppendUvarint(buf, uint64(res.numQueries))
	for q := 0; q < res.numQueries; q++ {
		buf = appendPairMatrix(buf, &res.LeftHandSideL[q])
		buf = appendPairMatrix(buf, &res.LeftHandSideE[q])
		buf = appendPairMatrix(buf, &res.LeftHandSideU[q])
		buf = appendPairVector(buf, &res.RightHandSideL[q])
		buf = appendPairVector(buf, &res.RightHandSideE[q])
		buf = appendPairVector(buf, &res.RightHandSideU[q])
		buf = appendFloat(buf, res.Pruned[q])
		buf = appendFloat(buf, res.UsedError[q])
		buf = appendFloat(buf, res.Predictions[q])
		buf = binary.AppendUvarint(buf, uint64(len(res.Coefficients[q])))
		for _, c := range res.Coefficients[q] {
			buf = appendFloat(buf, c)
		}
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (res *Result) UnmarshalBinary(data []byte) error {
	data, err := checkVersion(data)
	if err != nil {
		return err
	}
	rows, data, err := parseCount(data)
	if err != nil {
		return err
	}
	numQueries, data, err := parseCount(data)
	if err != nil {
		return err
	}
	res.Init(rows-1, numQueries)
	for q := 0; q < numQueries; q++ {
		if data, err = parsePairMatrix(data, &res.LeftHandSideL[q]); err != nil {
			return err
		}
		if data, err = parsePairMatrix(data, &res.LeftHandSideE[q]); err != nil {
			return err
		}
		if data, err = parsePairMatrix(data, &res.LeftHandSideU[q]); err != nil {
			return err
		}
		if data, err = parsePairVector(data, &res.RightHandSideL[q]); err != nil {
			return err
		}
		if data, err = parsePairVector(data, &res.RightHandSideE[q]); err != nil {
			return err
		}
		if data, err = parsePairVector(data, &res.RightHandSideU[q]); err != nil {
			return err
		}
		if res.Pruned[q], data, err = parseFloat(data); err != nil {
			return err
		}
		if res.UsedError[q], data, err = parseFloat(data); err != nil {
			return err
		}
		if res.Predictions[q], data, err = parseFloat(data); err != nil {
			return err
		}
		var nc int
		if nc, data, err = parseCount(data); err != nil {
			return err
		}
		if nc > 0 {
			coeffs := make([]float64, nc)
			for i := range coeffs {
				if coeffs[i], data, err = parseFloat(data); err != nil {
					return err
				}
			}
			res.Coefficients[q] = coeffs
		}
	}
	return nil
}
