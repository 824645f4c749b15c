package shell

import (
	"embed"
	"strings"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usageTopic(topic string) string {
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return "There is no help text for the topic " + topic
	}
	return strings.TrimRight(string(dat), "\n")
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		version := sc.gitVersion
		if version == "" {
			version = "unknown"
		}
		return msg(usageTopic("usage") + "\n\ncifras version: " + version), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}
