package wrapper

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/npclabs/mc-server-wrapper/log"
)

// maxLineSize bounds a single console line; anything longer is a scanner
// error and ends the read loop.
const maxLineSize = 1024 * 1024

// readLines drains the server's stdout for the lifetime of the process:
// every complete line is echoed to the local console, handed to the
// optional observer, and pushed onto the delivery queue. When the stream
// ends the queue is closed; that close is the one signal consumers get
// that the server is gone.
func (w *Wrapper) readLines(stdout io.Reader, q *lineQueue) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) {
			continue
		}

		// Raw echo so an operator watching the wrapper still sees the
		// server console.
		fmt.Println(line)

		if w.onLine != nil {
			w.onLine(line)
		}
		if !q.push(line) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("server stdout read error")
	}
	q.close()
}

// readStderr routes the server's stderr through the structured log. The
// wrapper never interprets it.
func (w *Wrapper) readStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			log.Debug().Str("stderr", line).Msg("server stderr")
		}
	}
}
