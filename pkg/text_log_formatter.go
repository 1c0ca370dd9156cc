package harness

import (
	"fmt"

	"github.com/mitchellh/colorstring"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// textLogFormatter colors messages per level and prefixes daemon output
// lines with the stream they arrived on.
type textLogFormatter struct {
	colorize *colorstring.Colorize
	colors   map[log.Level]string
}

func newTextLogFormatter(v *viper.Viper, colorize bool) *textLogFormatter {
	return &textLogFormatter{
		colorize: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !colorize,
			Reset:   true,
		},
		colors: map[log.Level]string{
			log.PanicLevel: v.GetString("log_color_panic"),
			log.FatalLevel: v.GetString("log_color_fatal"),
			log.ErrorLevel: v.GetString("log_color_error"),
			log.WarnLevel:  v.GetString("log_color_warn"),
			log.InfoLevel:  v.GetString("log_color_info"),
			log.DebugLevel: v.GetString("log_color_debug"),
			log.TraceLevel: v.GetString("log_color_trace"),
		},
	}
}

func (f *textLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var prefix = "[" + f.colors[entry.Level] + "]"
	stream := entry.Data["stream"]
	if stream != nil {
		switch stream := stream.(type) {
		case string:
			prefix = fmt.Sprintf("%snaemon.%s ≫ ", prefix, stream)
		}
	}
	return []byte(f.colorize.Color(fmt.Sprintf("%s%s\n", prefix, entry.Message))), nil
}
