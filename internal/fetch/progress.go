package fetch

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/utils"
)

// progressReader logs transfer progress at a bounded rate while the body
// streams through it.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastLog  time.Time
	interval time.Duration
}

func newProgressReader(r io.Reader, total int64) *progressReader {
	return &progressReader{r: r, total: total, interval: time.Second}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)

	now := time.Now()
	if now.Sub(p.lastLog) >= p.interval || err == io.EOF {
		p.lastLog = now
		if p.total > 0 {
			logrus.Debugf("downloaded %s of %s (%d%%)",
				utils.ConvertSize(p.read), utils.ConvertSize(p.total),
				p.read*100/p.total)
		} else {
			logrus.Debugf("downloaded %s", utils.ConvertSize(p.read))
		}
	}

	return n, err
}
