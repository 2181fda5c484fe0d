// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlslc

import (
	"context"
	"testing"
)

const benchGeometrySource = `
struct VS_OUT { float4 pos : SV_Position; float2 uv : TEXCOORD0; };
struct GS_OUT { float4 pos : SV_Position; float2 uv : TEXCOORD0; };

[maxvertexcount(3)]
void main(triangle VS_OUT input[3], inout TriangleStream<GS_OUT> stream)
{
    GS_OUT o = (GS_OUT)0;
    for (int i = 0; i < 3; i++)
    {
        o.pos = input[i].pos;
        o.uv = input[i].uv;
        stream.Append(o);
    }
    stream.RestartStrip();
}
`

func BenchmarkConvert(b *testing.B) {
	benchmarks := []struct {
		name   string
		stage  Stage
		source string
	}{
		{"vertex", StageVertex, vertexSource},
		{"fragment", StageFragment, fragmentSource},
		{"geometry", StageGeometry, benchGeometrySource},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bm.source)))
			for i := 0; i < b.N; i++ {
				if _, err := Convert(bm.stage, bm.source); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkConvertAll(b *testing.B) {
	jobs := batchJobs(64)
	opts := BatchOptions{Options: DefaultOptions()}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ConvertAll(context.Background(), jobs, opts); err != nil {
			b.Fatal(err)
		}
	}
}
