// Layout of linux/fb.h structures for amd64/arm, from struct fb_fix_screeninfo and fb_var_screeninfo.

package framebuffer

type fixedScreenInfo struct {
	Id           [16]byte
	Smem_start   uintptr
	Smem_len     uint32
	Type         uint32
	Type_aux     uint32
	Visual       uint32
	Xpanstep     uint16
	Ypanstep     uint16
	Ywrapstep    uint16
	Line_length  uint32
	Mmio_start   uintptr
	Mmio_len     uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

type bitField struct {
	Offset    uint32
	Length    uint32
	Msb_right uint32
}

type variableScreenInfo struct {
	Xres           uint32
	Yres           uint32
	Xres_virtual   uint32
	Yres_virtual   uint32
	Xoffset        uint32
	Yoffset        uint32
	Bits_per_pixel uint32
	Grayscale      uint32
	Red            bitField
	Green          bitField
	Blue           bitField
	Transp         bitField
	Nonstd         uint32
	Activate       uint32
	Height         uint32
	Width          uint32
	Accel_flags    uint32
	Pixclock       uint32
	Left_margin    uint32
	Right_margin   uint32
	Upper_margin   uint32
	Lower_margin   uint32
	Hsync_len      uint32
	Vsync_len      uint32
	Sync           uint32
	Vmode          uint32
	Rotate         uint32
	Colorspace     uint32
	Reserved       [4]uint32
}

const (
	getVariableScreenInfo uintptr = 0x4600
	getFixedScreenInfo    uintptr = 0x4602
)
