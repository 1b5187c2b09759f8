package langmatrix

// Extensions is the exhaustive, ordered list of recognized language file
// extensions. The order is the column order of every language matrix on
// disk, so entries must only ever be appended, never reordered.
var Extensions = []string{
	// Web (JavaScript, TypeScript, markup, styling)
	".js", ".jsx", ".ts", ".tsx", ".html", ".css", ".scss", ".vue",
	// Systems and low-level (C, C++, Rust, Go, Assembly)
	".c", ".h", ".cpp", ".cc", ".hpp", ".rs", ".go", ".asm", ".s",
	// JVM (Java, Kotlin, Scala)
	".java", ".kt", ".scala",
	// Microsoft / .NET (C#, VB, F#)
	".cs", ".vb", ".fs",
	// Scripting (Python, Ruby, PHP, Perl, Lua)
	".py", ".rb", ".php", ".pl", ".lua",
	// Shell and command line
	".sh", ".bat", ".cmd", ".ps1",
	// Functional (Haskell, Elixir)
	".hs", ".ex",
	// Mobile (Swift, Dart, Objective-C)
	".swift", ".dart", ".m",
	// Data and science (R, Julia, SQL)
	".r", ".jl", ".sql",
	// Legacy (COBOL, Fortran, Pascal)
	".cob", ".cbl", ".f90", ".f95", ".f", ".pas",
}

// supported is the membership set over Extensions.
var supported = func() map[string]bool {
	m := make(map[string]bool, len(Extensions))
	for _, ext := range Extensions {
		m[ext] = true
	}
	return m
}()

// Supported reports whether ext is a recognized language extension.
func Supported(ext string) bool { return supported[ext] }
