package testutil

import (
	"time"

	"github.com/HerbHall/netsampler/pkg/models"
)

// NetstatFirst is `netstat -nbid` output from a macOS host. lo0 and en0 have
// traffic; gif0 and bridge0 have no inbound packets.
const NetstatFirst = `Name       Mtu   Network       Address            Ipkts Ierrs     Ibytes    Opkts Oerrs     Obytes  Coll Drop
lo0        16384 <Link#1>                        123456     0   98765432   123456     0   98765432     0    0
lo0        16384 127           127.0.0.1         123456     -   98765432   123456     -   98765432     -    -
lo0        16384 ::1/128     ::1                 123456     -   98765432   123456     -   98765432     -    -
gif0*      1280  <Link#2>                             0     0          0        0     0          0     0    0
en0        1500  <Link#4>    a4:83:e7:12:34:56  5000000     0 6000000000  2500000     0  300000000     0   12
en0        1500  192.168.1     192.168.1.23     4000000     -  5000000000 2000000     -  250000000     -    -
bridge0    1500  <Link#9>    36:00:11:22:33:44        0     0          0        5     0       1000     0    0
`

// NetstatSecond follows NetstatFirst ten seconds later. lo0 counters grew;
// en0 was restarted and its counters are below the earlier readings.
const NetstatSecond = `Name       Mtu   Network       Address            Ipkts Ierrs     Ibytes    Opkts Oerrs     Obytes  Coll Drop
lo0        16384 <Link#1>                        123556     0   98775432   123600     0   98785432     0    0
lo0        16384 127           127.0.0.1         123556     -   98775432   123600     -   98785432     -    -
gif0*      1280  <Link#2>                             0     0          0        0     0          0     0    0
en0        1500  <Link#4>    a4:83:e7:12:34:56     4000     1    1048576     3000     0     524288     0    0
en0        1500  192.168.1     192.168.1.23        4000     -    1048576     3000     -     524288     -    -
bridge0    1500  <Link#9>    36:00:11:22:33:44        0     0          0        5     0       1000     0    0
`

// NewRecord returns a Record with sensible defaults, suitable for test
// fixtures. Override individual fields with options.
func NewRecord(opts ...func(*models.Record)) models.Record {
	r := models.Record{
		Metric:    "Ipkts",
		ID:        "2128:Packets In:4",
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Value:     "0",
		Object:    "en0",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithMetric sets the record's metric name and external id.
func WithMetric(name, id string) func(*models.Record) {
	return func(r *models.Record) {
		r.Metric = name
		r.ID = id
	}
}

// WithValue sets the raw reading.
func WithValue(v string) func(*models.Record) {
	return func(r *models.Record) { r.Value = v }
}

// WithObject sets the interface name.
func WithObject(name string) func(*models.Record) {
	return func(r *models.Record) { r.Object = name }
}

// WithTimestamp sets the capture time.
func WithTimestamp(t time.Time) func(*models.Record) {
	return func(r *models.Record) { r.Timestamp = t }
}
