package ptrfs

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"9fans.net/go/plan9"
	"go.uber.org/zap"
)

// fidState tracks the server-side state of a fid. data is the file
// contents captured when the fid was opened.
type fidState struct {
	qid  plan9.Qid
	open bool
	mode uint8
	data []byte
}

// conn handles a single 9P connection.
type conn struct {
	srv   *Server
	rwc   io.ReadWriteCloser
	msize uint32

	mu   sync.Mutex
	fids map[uint32]*fidState
}

func newConn(srv *Server, rwc io.ReadWriteCloser) *conn {
	return &conn{
		srv:   srv,
		rwc:   rwc,
		msize: 8192 + plan9.IOHDRSIZE,
		fids:  make(map[uint32]*fidState),
	}
}

func (c *conn) getFid(fid uint32) *fidState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fids[fid]
}

func (c *conn) setFid(fid uint32, f *fidState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fids[fid] = f
}

func (c *conn) delFid(fid uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fids, fid)
}

func (c *conn) serve() {
	defer c.rwc.Close()
	for {
		tx, err := plan9.ReadFcall(c.rwc)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				c.srv.log.Warn("read fcall", zap.Error(err))
			}
			return
		}
		rx := c.handle(tx)
		rx.Tag = tx.Tag
		if err := plan9.WriteFcall(c.rwc, rx); err != nil {
			c.srv.log.Warn("write fcall", zap.Error(err))
			return
		}
	}
}

func (c *conn) handle(tx *plan9.Fcall) *plan9.Fcall {
	switch tx.Type {
	case plan9.Tversion:
		return c.tversion(tx)
	case plan9.Tauth:
		return rerror("authentication not required")
	case plan9.Tattach:
		return c.tattach(tx)
	case plan9.Tflush:
		return &plan9.Fcall{Type: plan9.Rflush}
	case plan9.Twalk:
		return c.twalk(tx)
	case plan9.Topen:
		return c.topen(tx)
	case plan9.Tcreate:
		return rerror("create prohibited")
	case plan9.Tread:
		return c.tread(tx)
	case plan9.Twrite:
		return c.twrite(tx)
	case plan9.Tclunk:
		return c.tclunk(tx)
	case plan9.Tremove:
		return rerror("remove prohibited")
	case plan9.Tstat:
		return c.tstat(tx)
	case plan9.Twstat:
		return rerror("wstat prohibited")
	default:
		return rerror(fmt.Sprintf("unknown message type %d", tx.Type))
	}
}

func rerror(msg string) *plan9.Fcall {
	return &plan9.Fcall{Type: plan9.Rerror, Ename: msg}
}

func (c *conn) tversion(tx *plan9.Fcall) *plan9.Fcall {
	c.msize = tx.Msize
	if c.msize > 65536 {
		c.msize = 65536
	}
	return &plan9.Fcall{
		Type:    plan9.Rversion,
		Msize:   c.msize,
		Version: plan9.VERSION9P,
	}
}

func (c *conn) tattach(tx *plan9.Fcall) *plan9.Fcall {
	c.setFid(tx.Fid, &fidState{qid: rootQid})
	return &plan9.Fcall{
		Type: plan9.Rattach,
		Qid:  rootQid,
	}
}

func (c *conn) twalk(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("unknown fid")
	}
	if f.open {
		return rerror("walk of open fid")
	}

	cur := f.qid
	wqid := make([]plan9.Qid, 0, len(tx.Wname))
	for _, name := range tx.Wname {
		if cur.Type&plan9.QTDIR == 0 {
			if len(wqid) == 0 {
				return rerror("not a directory")
			}
			break
		}
		if name == ".." {
			cur = rootQid
		} else if fl, ok := lookup(name); ok {
			cur = plan9.Qid{Path: fl.path, Type: plan9.QTFILE}
		} else {
			if len(wqid) == 0 {
				return rerror("file not found")
			}
			break
		}
		wqid = append(wqid, cur)
	}
	if len(wqid) == len(tx.Wname) {
		c.setFid(tx.Newfid, &fidState{qid: cur})
	}
	return &plan9.Fcall{
		Type: plan9.Rwalk,
		Wqid: wqid,
	}
}

func (c *conn) topen(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("unknown fid")
	}
	rw := tx.Mode & 3
	if f.qid.Type&plan9.QTDIR != 0 {
		if rw != plan9.OREAD {
			return rerror("is a directory")
		}
		f.data = c.dirData()
	} else {
		fl, _ := lookupPath(f.qid.Path)
		if rw != plan9.OREAD && fl.mode&0200 == 0 {
			return rerror("permission denied")
		}
		f.data = c.srv.contents(f.qid.Path)
	}
	f.open = true
	f.mode = tx.Mode
	return &plan9.Fcall{
		Type:   plan9.Ropen,
		Qid:    f.qid,
		Iounit: c.msize - plan9.IOHDRSIZE,
	}
}

func (c *conn) dirData() []byte {
	var all []byte
	for _, fl := range files {
		b, _ := c.srv.dir(fl).Bytes()
		all = append(all, b...)
	}
	return all
}

// wholeDirs trims data to the stat entries that fit entirely in count.
func wholeDirs(data []byte, count uint32) []byte {
	n := 0
	for n+2 <= len(data) {
		m := n + 2 + (int(data[n]) | int(data[n+1])<<8)
		if m > len(data) || uint32(m) > count {
			break
		}
		n = m
	}
	return data[:n]
}

func (c *conn) tread(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("unknown fid")
	}
	if !f.open {
		return rerror("fid not open")
	}
	var data []byte
	if tx.Offset < uint64(len(f.data)) {
		data = f.data[tx.Offset:]
	}
	if f.qid.Type&plan9.QTDIR != 0 {
		data = wholeDirs(data, tx.Count)
	} else if uint32(len(data)) > tx.Count {
		data = data[:tx.Count]
	}
	return &plan9.Fcall{
		Type: plan9.Rread,
		Data: data,
	}
}

func (c *conn) twrite(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("unknown fid")
	}
	if !f.open || f.mode&3 == plan9.OREAD {
		return rerror("fid not open for write")
	}
	if f.qid.Path != qidCtl {
		return rerror("write prohibited")
	}
	if err := c.srv.ctl(string(tx.Data)); err != nil {
		return rerror(err.Error())
	}
	return &plan9.Fcall{
		Type:  plan9.Rwrite,
		Count: uint32(len(tx.Data)),
	}
}

func (c *conn) tclunk(tx *plan9.Fcall) *plan9.Fcall {
	c.delFid(tx.Fid)
	return &plan9.Fcall{Type: plan9.Rclunk}
}

func (c *conn) tstat(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("unknown fid")
	}

	var d *plan9.Dir
	if f.qid.Path == qidRoot {
		d = c.srv.rootDir()
	} else {
		fl, ok := lookupPath(f.qid.Path)
		if !ok {
			return rerror("unknown qid")
		}
		d = c.srv.dir(fl)
		d.Length = uint64(len(c.srv.contents(fl.path)))
	}
	b, err := d.Bytes()
	if err != nil {
		return rerror(err.Error())
	}
	return &plan9.Fcall{
		Type: plan9.Rstat,
		Stat: b,
	}
}
