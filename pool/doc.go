// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer pooling for hioload-wsbench. Server sessions share frame write
// buffers so that an idle session holds no write buffer at all.
package pool
