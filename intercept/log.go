package intercept

import (
	"fmt"
	"log/syslog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	logrussyslog "github.com/sirupsen/logrus/hooks/syslog"
)

// EnvLogLevel selects the logrus level ("error", "info", "debug",
// "trace", ...). The default stays at info.
const EnvLogLevel = "VGPU_UNLOCK_LOG"

func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	// The daemons run detached, so mirror everything to syslog as well.
	if hook, err := logrussyslog.NewSyslogHook("", "",
		syslog.LOG_NOTICE|syslog.LOG_USER, "vgpu_unlock"); err == nil {
		logrus.AddHook(hook)
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vgpu-unlock: bad %s value %q\n", EnvLogLevel, lvl)

			return
		}

		logrus.SetLevel(parsed)
	}
}

// hexDump renders a buffer the way the daemons' own debug output does:
// offset, sixteen hex bytes, printable characters.
func hexDump(data []byte) string {
	if len(data) == 0 {
		return "\t--- empty ---"
	}

	var b strings.Builder

	for i := 0; i < len(data); i += 16 {
		line := data[i:]
		if len(line) > 16 {
			line = line[:16]
		}

		fmt.Fprintf(&b, "    %08x", i)

		for _, c := range line {
			fmt.Fprintf(&b, " %02x", c)
		}

		for j := len(line); j < 16; j++ {
			b.WriteString("   ")
		}

		b.WriteByte(' ')

		for _, c := range line {
			if c < 0x20 || c >= 0x7f {
				b.WriteByte('.')
			} else {
				b.WriteByte(c)
			}
		}

		b.WriteByte('\n')
	}

	return b.String()
}
