// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package sp3

import (
	"bytes"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Binary image of a parsed file, much faster to load than the text.
// Times are kept as nanoseconds since 1970 so that decoding does not depend on the local time zone.
type snapshot struct {
	Header     *Header         `msgpack:"header"`
	FirstEpoch int64           `msgpack:"first_epoch"`
	Production *Production     `msgpack:"production,omitempty"`
	Release    int64           `msgpack:"release,omitempty"`
	Epochs     []snapshotEpoch `msgpack:"epochs"`
}

type snapshotEpoch struct {
	Time    int64     `msgpack:"t"`
	Sats    []SatType `msgpack:"sats"`
	Entries []Entry   `msgpack:"entries"`
}

// Encode the header, production attributes and records (warnings are not kept)
func (p *SP3) MarshalBinary() ([]byte, error) {
	s := snapshot{
		Header:     p.Header,
		FirstEpoch: p.Header.FirstEpoch.UnixNano(),
		Production: p.Production,
	}
	if p.Production != nil {
		s.Release = p.Production.Release.UnixNano()
	}
	for _, e := range p.store.epochs {
		se := snapshotEpoch{Time: e.time.UnixNano(), Sats: e.sats}
		for _, sat := range e.sats {
			se.Entries = append(se.Entries, *e.entries[sat])
		}
		s.Epochs = append(s.Epochs, se)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(&s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *SP3) UnmarshalBinary(data []byte) error {
	var s snapshot
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Header == nil {
		return fmt.Errorf("failed to decode snapshot: no header")
	}
	s.Header.FirstEpoch = time.Unix(0, s.FirstEpoch).UTC()
	if s.Header.Accuracy == nil {
		s.Header.Accuracy = map[SatType]int{}
	}
	store := &Store{}
	for _, se := range s.Epochs {
		if len(se.Sats) != len(se.Entries) {
			return fmt.Errorf("failed to decode snapshot: %d satellites, %d entries", len(se.Sats), len(se.Entries))
		}
		e := store.appendEpoch(time.Unix(0, se.Time).UTC())
		for i, sat := range se.Sats {
			*e.add(sat) = se.Entries[i]
		}
	}
	if s.Production != nil {
		s.Production.Release = time.Unix(0, s.Release).UTC()
	}
	*p = SP3{Header: s.Header, Production: s.Production, store: store}
	return nil
}
