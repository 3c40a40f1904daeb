package main

import (
	"github.com/marquee-player/marquee/cmd"
	"github.com/marquee-player/marquee/config"
	"github.com/marquee-player/marquee/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	cmd.Execute()
}
