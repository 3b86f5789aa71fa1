package sizeplan

import "testing"

func TestSizeofScalesWithChunkCount(t *testing.T) {
	one := Sizeof[uint32, NeighborValue](1, 0, 8)
	sixteen := Sizeof[uint32, NeighborValue](16, 0, 8)
	if sixteen.TotalBytes != one.PrimaryChunkBytes*16 {
		t.Fatalf("TotalBytes = %d; want %d", sixteen.TotalBytes, one.PrimaryChunkBytes*16)
	}
}

func TestSizeofIncludesExtendedChunks(t *testing.T) {
	plan := Sizeof[uint32, NeighborValue](4, 2, 4)
	want := plan.PrimaryChunkBytes*4 + plan.ExtendedChunkBytes*2
	if plan.TotalBytes != want {
		t.Fatalf("TotalBytes = %d; want %d", plan.TotalBytes, want)
	}
}

func TestPrimaryChunkBytesIsCacheLineMultiple(t *testing.T) {
	plan := Sizeof[uint64, FWStateValue](1, 0, 16)
	if plan.PrimaryChunkBytes%64 != 0 {
		t.Fatalf("PrimaryChunkBytes = %d; not a multiple of 64", plan.PrimaryChunkBytes)
	}
}

func TestVerifyLayoutRejectsOutOfRangePairsPerChunk(t *testing.T) {
	if err := VerifyLayout[uint32, NeighborValue](0); err == nil {
		t.Fatalf("VerifyLayout(0) succeeded; want error")
	}
	if err := VerifyLayout[uint32, NeighborValue](33); err == nil {
		t.Fatalf("VerifyLayout(33) succeeded; want error")
	}
}

func TestVerifyLayoutAcceptsRealisticValueTypes(t *testing.T) {
	cases := []struct {
		name          string
		pairsPerChunk uint32
		verify        func(uint32) error
	}{
		{"neighbor", 16, VerifyLayout[uint32, NeighborValue]},
		{"fwstate", 8, VerifyLayout[uint32, FWStateValue]},
		{"nat64lan", 16, VerifyLayout[uint32, NAT64StatefulLANValue]},
		{"nat64wan", 4, VerifyLayout[uint32, NAT64StatefulWANValue]},
		{"balancer", 8, VerifyLayout[uint32, BalancerStateValue]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.verify(c.pairsPerChunk); err != nil {
				t.Fatalf("VerifyLayout: %v", err)
			}
		})
	}
}
