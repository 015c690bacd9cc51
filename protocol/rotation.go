package protocol

import "github.com/go-gl/mathgl/mgl32"

var (
	uxp = mgl32.Vec3{1, 0, 0}
	uxn = mgl32.Vec3{-1, 0, 0}
	uyp = mgl32.Vec3{0, 1, 0}
	uyn = mgl32.Vec3{0, -1, 0}
	uzp = mgl32.Vec3{0, 0, 1}
	uzn = mgl32.Vec3{0, 0, -1}
)

// octantTable holds the spherical triangle for each of the 8 octants a unit
// vector can start in. The low 3 bits of an encoded column select the
// octant; each further 2-bit step subdivides the triangle.
var octantTable = [8][3]mgl32.Vec3{
	{uyp, uxp, uzp},
	{uyp, uzp, uxn},
	{uyp, uzn, uxp},
	{uyp, uxn, uzn},
	{uzp, uxp, uyn},
	{uxn, uzp, uyn},
	{uxp, uzn, uyn},
	{uzn, uxn, uyn},
}

// ConvertMatrixToNetwork encodes the Y and Z columns of a rotation matrix as
// two b-bit subdivision codes. The X column is implied by the cross product.
func ConvertMatrixToNetwork(b uint8, m mgl32.Mat3) (uint32, uint32) {
	r1 := convertRotColumnToNetwork(b, m.Col(1))
	r2 := convertRotColumnToNetwork(b, m.Col(2))
	return r1, r2
}

// ConvertMatrixFromNetwork decodes two column codes back into a rotation
// matrix.
func ConvertMatrixFromNetwork(b uint8, v1, v2 uint32) mgl32.Mat3 {
	r1 := convertRotColumnFromNetwork(b, v1)
	r2 := convertRotColumnFromNetwork(b, v2)
	r0 := r1.Cross(r2)
	return mgl32.Mat3FromCols(r0, r1, r2)
}

func convertRotColumnFromNetwork(b uint8, v uint32) mgl32.Vec3 {
	start := v & 7

	temp1 := octantTable[start][0]
	temp2 := octantTable[start][1]
	temp3 := octantTable[start][2]
	for pos := uint8(3); pos < b; pos += 2 {
		step := (v >> pos) & 3
		c1 := temp1.Add(temp2).Normalize()
		c2 := temp2.Add(temp3).Normalize()
		c3 := temp1.Add(temp3).Normalize()
		switch step {
		case 0:
			temp2 = c1
			temp3 = c3
		case 1:
			temp1 = c1
			temp3 = c2
		case 2:
			temp1 = c3
			temp2 = c2
		case 3:
			temp1 = c1
			temp2 = c2
			temp3 = c3
		}
	}
	return temp1.Add(temp2).Add(temp3).Normalize()
}

func convertRotColumnToNetwork(b uint8, v mgl32.Vec3) uint32 {
	res := uint32(0)
	if v[0] < 0.0 {
		res |= 1
	}
	if v[2] < 0.0 {
		res |= 2
	}
	if v[1] < 0.0 {
		res |= 4
	}
	temp1 := octantTable[res][0]
	temp2 := octantTable[res][1]
	temp3 := octantTable[res][2]
	for i := uint8(3); i < b; i += 2 {
		temp4 := temp1.Add(temp2).Normalize()
		temp5 := temp2.Add(temp3).Normalize()
		temp6 := temp1.Add(temp3).Normalize()

		a1 := temp4.Sub(temp6).Cross(v.Sub(temp6))
		if a1.Dot(v) < 0.0 {
			a2 := temp5.Sub(temp4).Cross(v.Sub(temp4))
			if a2.Dot(v) < 0.0 {
				a3 := temp6.Sub(temp5).Cross(v.Sub(temp5))
				if a3.Dot(v) < 0.0 {
					res |= 3 << i
					temp1 = temp4
					temp2 = temp5
					temp3 = temp6
				} else {
					res |= 2 << i
					temp1 = temp6
					temp2 = temp5
				}
			} else {
				res |= 1 << i
				temp1 = temp4
				temp3 = temp5
			}
		} else {
			temp2 = temp4
			temp3 = temp6
		}
	}
	return res
}
