// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rest exposes the conversion pipeline over HTTP for remote callers.
// One conversion runs per request; the conversion log streams back as the
// response body.
package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/hdfconvert/internal/convert"
)

// Serve runs the REST API on the given listen address until the process
// terminates. A non-empty chroot or non-negative setuid sandboxes the
// process first.
func Serve(addr string, opt convert.Options, chroot string, setuid int) error {
	if err := MakeSandbox(chroot, setuid); err != nil {
		return err
	}
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/convert", postConvert(opt))
		}
	}
	return r.Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

type postConvertArgs struct {
	Input  string `json:"input" binding:"required"`
	Output string `json:"output"`
}

func postConvert(opt convert.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var args postConvertArgs
		if err := c.ShouldBind(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if args.Output == "" {
			args.Output = convert.OutputName(args.Input)
		}

		logWriter := c.Writer
		logWriter.Header().Set("Content-Type", "text/plain")
		logWriter.WriteHeader(http.StatusOK)

		if err := convert.Run(args.Input, args.Output, opt, logWriter); err != nil {
			fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		}
		logWriter.(http.Flusher).Flush()
	}
}
