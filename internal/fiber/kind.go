package fiber

// WorkTag is the numeric instance kind used by the React reconciler.
type WorkTag int

const (
	FunctionComponent        WorkTag = 0
	ClassComponent           WorkTag = 1
	IndeterminateComponent   WorkTag = 2
	HostRoot                 WorkTag = 3
	HostPortal               WorkTag = 4
	HostComponent            WorkTag = 5
	HostText                 WorkTag = 6
	Fragment                 WorkTag = 7
	Mode                     WorkTag = 8
	ContextConsumer          WorkTag = 9
	ContextProvider          WorkTag = 10
	ForwardRef               WorkTag = 11
	Profiler                 WorkTag = 12
	SuspenseComponent        WorkTag = 13
	MemoComponent            WorkTag = 14
	SimpleMemoComponent      WorkTag = 15
	LazyComponent            WorkTag = 16
	IncompleteClassComponent WorkTag = 17
	DehydratedFragment       WorkTag = 18
	SuspenseListComponent    WorkTag = 19
	ScopeComponent           WorkTag = 21
	OffscreenComponent       WorkTag = 22
	LegacyHiddenComponent    WorkTag = 23
	CacheComponent           WorkTag = 24
	TracingMarkerComponent   WorkTag = 25
	HostHoistable            WorkTag = 26
	HostSingleton            WorkTag = 27
	IncompleteFunction       WorkTag = 28
	Throw                    WorkTag = 29
)

// Kind groups work tags by how the walker treats them.
type Kind int

const (
	KindUnknown Kind = iota
	KindHost
	KindText
	KindComposite
	KindMemo
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindText:
		return "text"
	case KindComposite:
		return "composite"
	case KindMemo:
		return "memo"
	case KindStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// Classify maps every work tag to its Kind. Tags this package does not
// know about are KindUnknown.
func Classify(tag WorkTag) Kind {
	switch tag {
	case HostComponent, HostHoistable, HostSingleton:
		return KindHost
	case HostText:
		return KindText
	case FunctionComponent, ClassComponent, IndeterminateComponent,
		ForwardRef, IncompleteClassComponent, IncompleteFunction:
		return KindComposite
	case MemoComponent, SimpleMemoComponent:
		return KindMemo
	case HostRoot, HostPortal, Fragment, Mode, ContextConsumer, ContextProvider,
		Profiler, SuspenseComponent, LazyComponent, DehydratedFragment,
		SuspenseListComponent, ScopeComponent, OffscreenComponent,
		LegacyHiddenComponent, CacheComponent, TracingMarkerComponent, Throw:
		return KindStructural
	default:
		return KindUnknown
	}
}

// IsComponent reports whether instances of this kind correspond to a
// user-visible component (plain, class, forward-ref or memo wrapped).
func (k Kind) IsComponent() bool {
	return k == KindComposite || k == KindMemo
}
