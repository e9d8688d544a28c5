// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

const (
	// App 应用程序名称
	App = "wired"

	// Version 应用程序版本
	Version = "v0.1.0"

	// DefaultBufferSize 默认的连接读写缓冲区长度
	//
	// 每条连接 wire.Pipe 的默认读块大小，在吞吐与单连接内存占用之间取一个折中值。
	DefaultBufferSize = 4096
)
