// Package api exposes pted's buffer to Lua edit scripts.
//
// Modules are preloaded under the pted namespace and are loaded with
// require:
//
//	local buf = require("pted.buf")
//	local util = require("pted.util")
//
//	buf.group("tidy", function()
//	    for n = buf.line_count(), 1, -1 do
//	        local line = buf.line(n)
//	        local trimmed = util.trim_right(line)
//	        if trimmed ~= line then
//	            local start = buf.line_start(n)
//	            buf.replace(start, util.len(line), trimmed)
//	        end
//	    end
//	end)
//
// Offsets and lengths are rune counts starting at 0. Line numbers start
// at 1, as is usual in Lua.
//
// require("pted") returns a table aggregating every module plus version
// information.
package api
