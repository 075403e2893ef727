package config

// ProgramFileExt is the extension of front-end output the compiler consumes:
// a JSON-encoded declaration tree produced by the borrowed parser.
const ProgramFileExt = ".pony.json"

// BundleFileExt is the extension of compiled program bundles.
const BundleFileExt = ".ponyb"

// ProjectConfigFile is the optional per-project configuration file name.
const ProjectConfigFile = "pony.yaml"

// IsTestMode indicates if the compiler is running under tests.
// Set once at startup; tests use it for deterministic output.
var IsTestMode = false

// Compiler-known function names consumed by the self-hosted standard library.
const (
	MemAllocFuncName = "mem_alloc"
	SizeofFuncName   = "sizeof"
	MainFuncName     = "main"
	SelfName         = "self"
)

// Pointer primitive type names as they appear in type position.
const (
	RawAddressTypeName   = "RawAddress"
	TypedAddressTypeName = "TypedAddress"
	SizedAddressTypeName = "SizedAddress"
)

// Built-in scalar type names.
const (
	I32TypeName  = "i32"
	I64TypeName  = "i64"
	U8TypeName   = "u8"
	U32TypeName  = "u32"
	U64TypeName  = "u64"
	F32TypeName  = "f32"
	F64TypeName  = "f64"
	BoolTypeName = "bool"
	StrTypeName  = "str"
	UnitTypeName = "unit"
)
