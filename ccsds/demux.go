// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ccsds

import "github.com/rob-gra/spacepackets-go/internal/spclog"

// ParseSpacePackets concatenates all buffers in queue front-to-back, then
// scans for a 2 octet value matching one of ids masked to 13 bits. On a
// match it reads the data_len field and emits the full packet. On a
// partial tail (a header match without enough bytes to complete the
// packet) it re-queues exactly the remaining tail and returns. Bytes
// preceding a match are counted in skipped and discarded. If fewer than
// HeaderLen octets remain with no header match, the unmatched tail is
// always re-queued rather than dropped, so no data is silently lost.
//
// queue is drained and replaced with whatever tail remains unconsumed.
func ParseSpacePackets(queue *[][]byte, ids []PacketId, log spclog.Provider) (packets [][]byte, skipped int) {
	buf := concat(*queue)
	*queue = nil

	idSet := make(map[uint16]struct{}, len(ids))
	for _, id := range ids {
		idSet[id.Raw()&0x1FFF] = struct{}{}
	}

	i := 0
	for {
		if len(buf)-i < HeaderLen {
			if i < len(buf) {
				*queue = [][]byte{buf[i:]}
			}
			return packets, skipped
		}
		raw := uint16(buf[i])<<8 | uint16(buf[i+1])
		if _, ok := idSet[raw&0x1FFF]; !ok {
			skipped++
			i++
			continue
		}
		hdr, err := UnpackSpHeader(buf[i:])
		if err != nil {
			skipped++
			i++
			continue
		}
		total := hdr.PacketLen()
		if i+total > len(buf) {
			*queue = [][]byte{buf[i:]}
			return packets, skipped
		}
		if log != nil {
			log.Debug("ccsds: matched packet id %#04x, len %d at offset %d", raw&0x1FFF, total, i)
		}
		packets = append(packets, buf[i:i+total])
		i += total
	}
}

func concat(bufs [][]byte) []byte {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bufs {
		out = append(out, b...)
	}
	return out
}
