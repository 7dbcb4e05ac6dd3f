package partition

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/okian/revgroups/internal/domain/model"
)

// Fingerprint hashes a grouping so that reordering groups or members, or
// swapping guests of the same role, yields the same value.
func Fingerprint(groups []model.Group) uint64 {
	sums := make([]uint64, len(groups))
	var sb strings.Builder
	for i, g := range groups {
		tokens := make([]string, len(g))
		for j, m := range g {
			flag := "r"
			if m.Presenter {
				flag = "p"
			}
			tokens[j] = m.Participant.Kind() + "|" + flag
		}
		slices.Sort(tokens)
		sb.Reset()
		for _, t := range tokens {
			sb.WriteString(t)
			sb.WriteByte(0)
		}
		sums[i] = xxh3.HashString(sb.String())
	}
	slices.Sort(sums)

	buf := make([]byte, 8*len(sums))
	for i, s := range sums {
		binary.LittleEndian.PutUint64(buf[i*8:], s)
	}
	return xxh3.Hash(buf)
}
